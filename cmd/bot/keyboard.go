package main

import (
	"fmt"
	"strconv"
	"time"

	tele "gopkg.in/telebot.v3"

	"promobot/internal/models"
)

// Reply keyboards. Button texts double as routing keys, every text here has
// a matching b.Handle registration.
var (
	menuMain            = &tele.ReplyMarkup{ResizeKeyboard: true}
	menuAdmin           = &tele.ReplyMarkup{ResizeKeyboard: true}
	menuSeller          = &tele.ReplyMarkup{ResizeKeyboard: true}
	menuPromoManagement = &tele.ReplyMarkup{ResizeKeyboard: true}
	menuStaffManagement = &tele.ReplyMarkup{ResizeKeyboard: true}
	menuCancel          = &tele.ReplyMarkup{ResizeKeyboard: true}

	btnPromos   = menuMain.Text("🎁 Promo codes")
	btnMyPromos = menuMain.Text("📋 My promo codes")

	btnManagePromos   = menuAdmin.Text("Manage promo codes")
	btnManageStaff    = menuAdmin.Text("Manage staff")
	btnManualActivate = menuAdmin.Text("Activate code manually")
	btnHistory        = menuAdmin.Text("Activation history")
	btnExitStaffMode  = menuAdmin.Text("Back to user mode")

	btnActivateClientCode = menuSeller.Text("Activate client code")
	btnSellerStats        = menuSeller.Text("My stats")

	btnAddPromo  = menuPromoManagement.Text("Add promo code")
	btnPromoList = menuPromoManagement.Text("Promo code list")

	btnAddAdmin   = menuStaffManagement.Text("Add admin")
	btnAddSeller  = menuStaffManagement.Text("Add seller")
	btnAdminList  = menuStaffManagement.Text("Admin list")
	btnSellerList = menuStaffManagement.Text("Seller list")

	btnBack   = menuPromoManagement.Text("Back")
	btnCancel = menuCancel.Text("Cancel")
)

// Inline button templates, matched by Unique.
var (
	btnClaim            = tele.Btn{Unique: "claim"}
	btnPromoView        = tele.Btn{Unique: "promo_view"}
	btnPromoToggle      = tele.Btn{Unique: "promo_toggle"}
	btnPromoDelete      = tele.Btn{Unique: "promo_delete"}
	btnPromoEdit        = tele.Btn{Unique: "promo_edit"}
	btnPromoBackToList  = tele.Btn{Unique: "promo_back"}
	btnStaffView        = tele.Btn{Unique: "staff_view"}
	btnStaffToggle      = tele.Btn{Unique: "staff_toggle"}
	btnStaffDelete      = tele.Btn{Unique: "staff_delete"}
	btnStaffBackToList  = tele.Btn{Unique: "staff_back"}
	btnPickActivation   = tele.Btn{Unique: "activate"}
	btnCancelActivation = tele.Btn{Unique: "cancel_activation"}
)

func init() {
	menuMain.Reply(menuMain.Row(btnPromos, btnMyPromos))

	menuAdmin.Reply(
		menuAdmin.Row(btnManagePromos, btnManageStaff),
		menuAdmin.Row(btnManualActivate, btnHistory),
		menuAdmin.Row(btnExitStaffMode),
	)

	menuSeller.Reply(
		menuSeller.Row(btnActivateClientCode),
		menuSeller.Row(btnSellerStats),
		menuSeller.Row(btnExitStaffMode),
	)

	menuPromoManagement.Reply(
		menuPromoManagement.Row(btnAddPromo, btnPromoList),
		menuPromoManagement.Row(btnBack),
	)

	menuStaffManagement.Reply(
		menuStaffManagement.Row(btnAddAdmin, btnAddSeller),
		menuStaffManagement.Row(btnAdminList, btnSellerList),
		menuStaffManagement.Row(btnBack),
	)

	menuCancel.Reply(menuCancel.Row(btnCancel))
}

func promoStatusIcon(promo *models.Promo, now time.Time) string {
	switch {
	case !promo.IsActive:
		return "❌"
	case promo.Expired(now):
		return "⏱"
	case promo.LimitReached():
		return "🔒"
	default:
		return "✅"
	}
}

func promoStatusLabel(promo *models.Promo, now time.Time) string {
	switch {
	case !promo.IsActive:
		return "❌ Inactive"
	case promo.Expired(now):
		return "⏱ Expired"
	case promo.LimitReached():
		return "🔒 Limit exhausted"
	default:
		return "✅ Active"
	}
}

func claimKeyboard(promos []*models.Promo) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(promos))
	for _, promo := range promos {
		rows = append(rows, markup.Row(markup.Data(promo.Name, btnClaim.Unique, strconv.FormatInt(promo.ID, 10))))
	}
	markup.Inline(rows...)
	return markup
}

func adminPromoListKeyboard(promos []*models.Promo, now time.Time) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(promos)+1)
	for _, promo := range promos {
		label := fmt.Sprintf("%s %s (%d/%d)", promoStatusIcon(promo, now), promo.Name, promo.UsedCount, promo.TotalLimit)
		rows = append(rows, markup.Row(markup.Data(label, btnPromoView.Unique, strconv.FormatInt(promo.ID, 10))))
	}
	rows = append(rows, markup.Row(markup.Data("◀️ Back", btnPromoBackToList.Unique)))
	markup.Inline(rows...)
	return markup
}

func promoActionsKeyboard(promo *models.Promo) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	id := strconv.FormatInt(promo.ID, 10)

	toggleLabel := "🔴 Deactivate"
	if !promo.IsActive {
		toggleLabel = "🟢 Activate"
	}

	markup.Inline(
		markup.Row(markup.Data(toggleLabel, btnPromoToggle.Unique, id)),
		markup.Row(markup.Data("🗑 Delete", btnPromoDelete.Unique, id)),
		markup.Row(markup.Data("✏️ Edit", btnPromoEdit.Unique, id)),
		markup.Row(markup.Data("◀️ Back to list", btnPromoBackToList.Unique)),
	)
	return markup
}

func staffListKeyboard(staff []*models.Staff) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(staff)+1)
	for _, member := range staff {
		icon := "✅"
		if !member.IsActive {
			icon = "❌"
		}
		label := fmt.Sprintf("%s %s", icon, member.DisplayName())
		rows = append(rows, markup.Row(markup.Data(label, btnStaffView.Unique, strconv.FormatInt(member.ID, 10))))
	}
	rows = append(rows, markup.Row(markup.Data("◀️ Back", btnStaffBackToList.Unique)))
	markup.Inline(rows...)
	return markup
}

// staffActionsKeyboard omits toggle and delete for the actor's own entry;
// the service guards against it anyway.
func staffActionsKeyboard(staff *models.Staff, actorID int64) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	id := strconv.FormatInt(staff.ID, 10)

	toggleLabel := "🔴 Deactivate"
	if !staff.IsActive {
		toggleLabel = "🟢 Activate"
	}

	rows := []tele.Row{}
	if staff.ID != actorID {
		rows = append(rows,
			markup.Row(markup.Data(toggleLabel, btnStaffToggle.Unique, id)),
			markup.Row(markup.Data("🗑 Delete", btnStaffDelete.Unique, id)),
		)
	}
	rows = append(rows, markup.Row(markup.Data("◀️ Back to list", btnStaffBackToList.Unique)))
	markup.Inline(rows...)
	return markup
}

func activationPickKeyboard(promos []*models.Promo, code string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(promos)+1)
	for _, promo := range promos {
		label := fmt.Sprintf("%s (%d/%d)", promo.Name, promo.UsedCount, promo.TotalLimit)
		rows = append(rows, markup.Row(markup.Data(label, btnPickActivation.Unique, strconv.FormatInt(promo.ID, 10), code)))
	}
	rows = append(rows, markup.Row(markup.Data("Cancel", btnCancelActivation.Unique)))
	markup.Inline(rows...)
	return markup
}
