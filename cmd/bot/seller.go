package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"promobot/internal/models"
	"promobot/internal/pkg/dates"
	"promobot/internal/services"
)

func registerSellerHandlers(b *tele.Bot) {
	b.Handle(&btnActivateClientCode, handleActivateClientCode)
	b.Handle(&btnSellerStats, handleSellerStats)
}

func requireStaff(c tele.Context, ctx context.Context) (*models.Staff, *tele.ReplyMarkup) {
	serviceStaff, err := getService[*services.ServiceStaff](c)
	if err != nil {
		return nil, nil
	}

	staff, err := serviceStaff.RequireActiveStaff(ctx, c.Sender().ID)
	if err != nil {
		return nil, nil
	}

	menu := menuSeller
	if staff.Role == models.RoleAdmin {
		menu = menuAdmin
	}
	return staff, menu
}

func handleActivateClientCode(c tele.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	staff, _ := requireStaff(c, ctx)
	if staff == nil {
		return c.Send("You do not have access to code activation.")
	}

	serviceDialog, err := getService[*services.ServiceDialog](c)
	if err != nil {
		return c.Send(replyOops)
	}

	_, err = serviceDialog.Begin(ctx, c.Sender().ID, models.FlowRedeemCode)
	if err != nil {
		return c.Send(replyOops)
	}

	return c.Send("Enter the client's individual promo code:", menuCancel)
}

func handleSellerStats(c tele.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	staff, menu := requireStaff(c, ctx)
	if staff == nil {
		return c.Send("You do not have access to seller statistics.")
	}

	serviceRedemption, err := getService[*services.ServiceRedemption](c)
	if err != nil {
		return c.Send(replyOops)
	}

	counts, err := serviceRedemption.StaffStats(ctx, staff.ID)
	if err != nil {
		return c.Send(replyOops, menu)
	}

	if staff.ActivatedPromos == 0 && len(counts) == 0 {
		return c.Send("You have not activated any promo codes yet.", menu)
	}

	servicePromo, err := getService[*services.ServicePromo](c)
	if err != nil {
		return c.Send(replyOops)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Your statistics\n\nTotal activations: %d\n", staff.ActivatedPromos)
	if len(counts) > 0 {
		sb.WriteString("\nBy promo code:\n")
		for _, count := range counts {
			name := "Removed promo code"
			if promo, err := servicePromo.FindPromoByID(ctx, count.PromoID); err == nil {
				name = promo.Name
			}
			fmt.Fprintf(&sb, "• %s: %d\n", name, count.Count)
		}
	}

	recent, err := serviceRedemption.StaffActivations(ctx, staff.ID, 10)
	if err == nil && len(recent) > 0 {
		sb.WriteString("\nRecent activations:\n")
		for _, activation := range recent {
			name := "Removed promo code"
			if activation.Promo != nil {
				name = activation.Promo.Name
			}
			fmt.Fprintf(&sb, "• %s: %s (%s)\n", activation.Code, name, dates.Format(activation.ActivatedAt))
		}
	}

	return c.Send(sb.String(), menu)
}

// finishRedeem runs the actual redemption once the dialog collected a code.
func finishRedeem(c tele.Context, ctx context.Context, staff *models.Staff, menu *tele.ReplyMarkup, code string) error {
	serviceRedemption, err := getService[*services.ServiceRedemption](c)
	if err != nil {
		return c.Send(replyOops)
	}

	result, err := serviceRedemption.RedeemCode(ctx, staff, code)
	if err != nil {
		return c.Send(redeemErrorReply(err, code), menu)
	}

	userInfo := "Unknown user"
	if result.User != nil {
		userInfo = result.User.DisplayName()
	}

	return c.Send(
		fmt.Sprintf("✅ Promo code \"%s\" activated!\n\n"+
			"User: %s\n"+
			"Promo: %s\n"+
			"Description: %s\n"+
			"Claimed: %s\n"+
			"Activated: %s\n\n"+
			"Usage for \"%s\": %d/%d",
			result.Claim.Code,
			userInfo,
			result.Promo.Name,
			result.Promo.Description,
			dates.Format(result.Claim.ClaimedAt),
			dates.Format(time.Now()),
			result.Promo.Name,
			result.Promo.UsedCount,
			result.Promo.TotalLimit,
		),
		menu,
	)
}

func redeemErrorReply(err error, code string) string {
	switch {
	case errors.Is(err, services.ErrCodeAlreadyActivated):
		return fmt.Sprintf("⚠️ Promo code \"%s\" has already been activated.", code)
	case errors.Is(err, services.ErrCodeNotFound):
		return fmt.Sprintf("❌ Promo code \"%s\" was not found.", code)
	case errors.Is(err, services.ErrPromoNotFound):
		return fmt.Sprintf("❌ Promo code \"%s\" belongs to a promo that was removed.", code)
	case errors.Is(err, services.ErrRedeemLock):
		return "This code is already being activated. Try again in a moment."
	default:
		return replyOops
	}
}
