package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"promobot/internal/models"
	"promobot/internal/pkg/dates"
	"promobot/internal/services"
)

func registerAdminHandlers(b *tele.Bot) {
	b.Handle(&btnManagePromos, adminOnly(func(c tele.Context) error {
		return c.Send("Choose an action:", menuPromoManagement)
	}))
	b.Handle(&btnManageStaff, adminOnly(func(c tele.Context) error {
		return c.Send("Choose an action:", menuStaffManagement)
	}))
	b.Handle(&btnBack, adminOnly(func(c tele.Context) error {
		return c.Send("Choose a section:", menuAdmin)
	}))

	b.Handle(&btnAddPromo, adminOnly(handleAddPromo))
	b.Handle(&btnPromoList, adminOnly(handleAdminPromoList))
	b.Handle(&btnManualActivate, adminOnly(handleManualActivate))
	b.Handle(&btnHistory, adminOnly(handleHistory))

	b.Handle(&btnAddAdmin, adminOnly(handleAddStaffRole(models.RoleAdmin)))
	b.Handle(&btnAddSeller, adminOnly(handleAddStaffRole(models.RoleSeller)))
	b.Handle(&btnAdminList, adminOnly(handleStaffList(models.RoleAdmin)))
	b.Handle(&btnSellerList, adminOnly(handleStaffList(models.RoleSeller)))

	b.Handle(&btnPromoView, adminOnly(handlePromoView))
	b.Handle(&btnPromoToggle, adminOnly(handlePromoToggle))
	b.Handle(&btnPromoDelete, adminOnly(handlePromoDelete))
	b.Handle(&btnPromoEdit, adminOnly(handlePromoEdit))
	b.Handle(&btnPromoBackToList, adminOnly(func(c tele.Context) error {
		//nolint:errcheck
		c.Delete()
		return sendAdminPromoList(c)
	}))

	b.Handle(&btnStaffView, adminOnly(handleStaffView))
	b.Handle(&btnStaffToggle, adminOnly(handleStaffToggle))
	b.Handle(&btnStaffDelete, adminOnly(handleStaffDelete))
	b.Handle(&btnStaffBackToList, adminOnly(func(c tele.Context) error {
		//nolint:errcheck
		c.Delete()
		return c.Send("Choose an action:", menuStaffManagement)
	}))

	b.Handle(&btnPickActivation, adminOnly(handlePickActivation))
	b.Handle(&btnCancelActivation, adminOnly(func(c tele.Context) error {
		return c.Edit("Activation cancelled.")
	}))
}

// adminOnly drops the update unless the sender is an active admin.
func adminOnly(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		serviceStaff, err := getService[*services.ServiceStaff](c)
		if err != nil {
			return c.Send(replyOops)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if !serviceStaff.IsAdmin(ctx, c.Sender().ID) {
			return c.Send("You do not have access to the admin panel.")
		}

		return next(c)
	}
}

func handleAddPromo(c tele.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	serviceDialog, err := getService[*services.ServiceDialog](c)
	if err != nil {
		return c.Send(replyOops)
	}

	_, err = serviceDialog.Begin(ctx, c.Sender().ID, models.FlowAddPromo)
	if err != nil {
		return c.Send(replyOops)
	}

	return c.Send("Enter the promo name:", menuCancel)
}

func sendAdminPromoList(c tele.Context) error {
	servicePromo, err := getService[*services.ServicePromo](c)
	if err != nil {
		return c.Send(replyOops)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	promos, err := servicePromo.ListAll(ctx)
	if err != nil {
		return c.Send(replyOops, menuPromoManagement)
	}

	if len(promos) == 0 {
		return c.Send("No promo codes yet.", menuPromoManagement)
	}

	return c.Send("Promo codes:\nPick one to manage:", adminPromoListKeyboard(promos, time.Now()))
}

func handleAdminPromoList(c tele.Context) error {
	return sendAdminPromoList(c)
}

func promoDetails(promo *models.Promo, now time.Time) string {
	return fmt.Sprintf("Promo: %s\n\nDescription: %s\nStatus: %s\nUsed: %d/%d\nValid until: %s\nID: %d\n\nChoose an action:",
		promo.Name, promo.Description, promoStatusLabel(promo, now),
		promo.UsedCount, promo.TotalLimit, dates.Format(promo.ExpiresAt), promo.ID)
}

func parsePromoCallback(c tele.Context) (int64, error) {
	data := strings.Split(c.Data(), "|")
	return strconv.ParseInt(strings.TrimSpace(data[0]), 10, 64)
}

func handlePromoView(c tele.Context) error {
	promoID, err := parsePromoCallback(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Invalid promo."})
	}

	servicePromo, err := getService[*services.ServicePromo](c)
	if err != nil {
		return c.Send(replyOops)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	promo, err := servicePromo.FindPromoByID(ctx, promoID)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Promo not found."})
	}

	return c.Edit(promoDetails(promo, time.Now()), promoActionsKeyboard(promo))
}

func handlePromoToggle(c tele.Context) error {
	promoID, err := parsePromoCallback(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Invalid promo."})
	}

	servicePromo, err := getService[*services.ServicePromo](c)
	if err != nil {
		return c.Send(replyOops)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	promo, err := servicePromo.TogglePromo(ctx, promoID)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Promo not found."})
	}

	return c.Edit(promoDetails(promo, time.Now()), promoActionsKeyboard(promo))
}

func handlePromoDelete(c tele.Context) error {
	promoID, err := parsePromoCallback(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Invalid promo."})
	}

	servicePromo, err := getService[*services.ServicePromo](c)
	if err != nil {
		return c.Send(replyOops)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := servicePromo.DeletePromo(ctx, promoID); err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Promo not found."})
	}

	//nolint:errcheck
	c.Delete()
	return sendAdminPromoList(c)
}

func handlePromoEdit(c tele.Context) error {
	promoID, err := parsePromoCallback(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Invalid promo."})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	serviceDialog, err := getService[*services.ServiceDialog](c)
	if err != nil {
		return c.Send(replyOops)
	}

	state, err := serviceDialog.Begin(ctx, c.Sender().ID, models.FlowEditPromo)
	if err != nil {
		return c.Send(replyOops)
	}
	state.PromoID = promoID
	if _, err := serviceDialog.Save(ctx, c.Sender().ID, state); err != nil {
		return c.Send(replyOops)
	}

	//nolint:errcheck
	c.Delete()
	return c.Send("What do you want to change?\n\n1. Name\n2. Description\n3. Limit\n4. Expiry date\n\nEnter the number:", menuCancel)
}

func handleAddStaffRole(role string) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		serviceDialog, err := getService[*services.ServiceDialog](c)
		if err != nil {
			return c.Send(replyOops)
		}

		state, err := serviceDialog.Begin(ctx, c.Sender().ID, models.FlowAddStaff)
		if err != nil {
			return c.Send(replyOops)
		}
		state.Role = role
		if _, err := serviceDialog.Save(ctx, c.Sender().ID, state); err != nil {
			return c.Send(replyOops)
		}

		return c.Send(fmt.Sprintf("Enter the Telegram ID of the new %s (they can send /myid to the bot to find it):", role), menuCancel)
	}
}

func handleStaffList(role string) tele.HandlerFunc {
	return func(c tele.Context) error {
		serviceStaff, err := getService[*services.ServiceStaff](c)
		if err != nil {
			return c.Send(replyOops)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		staff, err := serviceStaff.ListStaff(ctx, role)
		if err != nil {
			return c.Send(replyOops, menuStaffManagement)
		}

		if len(staff) == 0 {
			return c.Send(fmt.Sprintf("No %ss yet.", role), menuStaffManagement)
		}

		return c.Send(fmt.Sprintf("%s list:\nPick one to manage:", roleTitle(role)), staffListKeyboard(staff))
	}
}

func roleTitle(role string) string {
	if role == models.RoleAdmin {
		return "Admin"
	}
	return "Seller"
}

func staffDetails(staff *models.Staff) string {
	status := "✅ Active"
	if !staff.IsActive {
		status = "❌ Inactive"
	}
	return fmt.Sprintf("%s: %s\n\nID: %d\nStatus: %s\nAdded: %s\nActivations: %d\n\nChoose an action:",
		roleTitle(staff.Role), staff.DisplayName(), staff.ID, status, dates.Format(staff.AddedAt), staff.ActivatedPromos)
}

func handleStaffView(c tele.Context) error {
	staffID, err := parsePromoCallback(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Invalid entry."})
	}

	serviceStaff, err := getService[*services.ServiceStaff](c)
	if err != nil {
		return c.Send(replyOops)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	staff, err := serviceStaff.FindStaffByID(ctx, staffID)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Staff member not found."})
	}

	return c.Edit(staffDetails(staff), staffActionsKeyboard(staff, c.Sender().ID))
}

func handleStaffToggle(c tele.Context) error {
	staffID, err := parsePromoCallback(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Invalid entry."})
	}

	serviceStaff, err := getService[*services.ServiceStaff](c)
	if err != nil {
		return c.Send(replyOops)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	staff, err := serviceStaff.ToggleStaff(ctx, c.Sender().ID, staffID)
	if errors.Is(err, services.ErrSelfModify) {
		return c.Respond(&tele.CallbackResponse{Text: "You cannot deactivate yourself."})
	}
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Staff member not found."})
	}

	return c.Edit(staffDetails(staff), staffActionsKeyboard(staff, c.Sender().ID))
}

func handleStaffDelete(c tele.Context) error {
	staffID, err := parsePromoCallback(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Invalid entry."})
	}

	serviceStaff, err := getService[*services.ServiceStaff](c)
	if err != nil {
		return c.Send(replyOops)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = serviceStaff.RemoveStaff(ctx, c.Sender().ID, staffID)
	if errors.Is(err, services.ErrSelfModify) {
		return c.Respond(&tele.CallbackResponse{Text: "You cannot delete yourself."})
	}
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Staff member not found."})
	}

	//nolint:errcheck
	c.Delete()
	return c.Send("Staff member deleted.", menuStaffManagement)
}

func handleManualActivate(c tele.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	serviceDialog, err := getService[*services.ServiceDialog](c)
	if err != nil {
		return c.Send(replyOops)
	}

	_, err = serviceDialog.Begin(ctx, c.Sender().ID, models.FlowManualActivate)
	if err != nil {
		return c.Send(replyOops)
	}

	return c.Send("Enter the individual promo code to activate:", menuCancel)
}

func handleHistory(c tele.Context) error {
	serviceRedemption, err := getService[*services.ServiceRedemption](c)
	if err != nil {
		return c.Send(replyOops)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	serviceConfig, err := getService[*services.ServiceConfig](c)
	if err != nil {
		return c.Send(replyOops)
	}
	limit, _ := serviceConfig.GetIntConfig(ctx, services.CONFIG_HISTORY_PAGE_LIMIT, 20)

	activations, err := serviceRedemption.RecentActivations(ctx, limit)
	if err != nil {
		return c.Send(replyOops, menuAdmin)
	}

	if len(activations) == 0 {
		return c.Send("No promo codes have been activated yet.", menuAdmin)
	}

	serviceUser, err := getService[*services.ServiceUser](c)
	if err != nil {
		return c.Send(replyOops)
	}

	var sb strings.Builder
	sb.WriteString("📋 Recent activations:\n\n")
	for _, activation := range activations {
		promoName := "Removed promo code"
		if activation.Promo != nil {
			promoName = activation.Promo.Name
		}

		userInfo := "Unknown user"
		if claim, err := serviceRedemption.HasClaim(ctx, activation.Code); err == nil && claim != nil {
			if user, err := serviceUser.FindUserByID(ctx, claim.UserID); err == nil {
				userInfo = user.DisplayName()
			}
		}

		fmt.Fprintf(&sb, "🔑 Code: %s\n", activation.Code)
		fmt.Fprintf(&sb, "📦 Promo: %s\n", promoName)
		fmt.Fprintf(&sb, "👤 User: %s\n", userInfo)
		fmt.Fprintf(&sb, "🕒 Activated: %s\n\n", dates.Format(activation.ActivatedAt))
	}

	return c.Send(sb.String(), menuAdmin)
}

func handlePickActivation(c tele.Context) error {
	args := strings.Split(c.Data(), "|")
	if len(args) < 2 {
		return c.Respond(&tele.CallbackResponse{Text: "Invalid selection."})
	}

	promoID, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Invalid selection."})
	}
	code := strings.TrimSpace(args[1])

	serviceStaff, err := getService[*services.ServiceStaff](c)
	if err != nil {
		return c.Send(replyOops)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	staff, err := serviceStaff.FindStaffByID(ctx, c.Sender().ID)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Not authorized."})
	}

	serviceRedemption, err := getService[*services.ServiceRedemption](c)
	if err != nil {
		return c.Send(replyOops)
	}

	promo, err := serviceRedemption.ManualActivate(ctx, staff, promoID, code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCodeAlreadyActivated):
			return c.Edit("This code has already been activated by someone else.")
		case errors.Is(err, services.ErrPromoNotFound):
			return c.Edit("This promo was removed in the meantime.")
		case errors.Is(err, services.ErrPromoInactive):
			return c.Edit("This promo was deactivated in the meantime.")
		case errors.Is(err, services.ErrPromoExpired):
			return c.Edit("This promo has expired.")
		case errors.Is(err, services.ErrLimitExhausted):
			return c.Edit("This promo's limit has been exhausted.")
		case errors.Is(err, services.ErrClaimConflict):
			return c.Edit("The promo state changed just now. Try again.")
		default:
			return c.Edit(replyOops)
		}
	}

	return c.Edit(fmt.Sprintf("✅ Promo code \"%s\" activated!\n\nPromo: %s\nDescription: %s\nValid until: %s\n\nUsed: %d/%d",
		code, promo.Name, promo.Description, dates.Format(promo.ExpiresAt), promo.UsedCount, promo.TotalLimit))
}
