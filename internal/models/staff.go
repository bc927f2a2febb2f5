package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	RoleAdmin  = "admin"
	RoleSeller = "seller"
)

type Staff struct {
	bun.BaseModel   `bun:"table:staff"`
	ID              int64     `bun:"id,pk" json:"id"`
	FirstName       string    `bun:"first_name" json:"first_name"`
	LastName        string    `bun:"last_name" json:"last_name"`
	Username        string    `bun:"username" json:"username"`
	Role            string    `bun:"role,notnull,default:'admin'" json:"role"`
	IsActive        bool      `bun:"is_active,notnull,default:true" json:"is_active"`
	AddedBy         *int64    `bun:"added_by" json:"added_by"`
	AddedAt         time.Time `bun:"added_at,default:current_timestamp" json:"added_at"`
	ActivatedPromos int       `bun:"activated_promos,notnull,default:0" json:"activated_promos"`
}

func (staff *Staff) DisplayName() string {
	name := staff.FirstName
	if staff.LastName != "" {
		name += " " + staff.LastName
	}
	if staff.Username != "" {
		name += " @" + staff.Username
	}
	return name
}
