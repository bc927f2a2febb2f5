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

// registerDialogRouter wires the free-text dispatcher. Every multi-step
// wizard stores its progress in Redis; plain text outside a wizard is
// ignored so button handlers keep working.
func registerDialogRouter(b *tele.Bot) {
	b.Handle(tele.OnText, handleDialogText)
}

func handleDialogText(c tele.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	serviceDialog, err := getService[*services.ServiceDialog](c)
	if err != nil {
		return c.Send(replyOops)
	}

	state, err := serviceDialog.Current(ctx, c.Sender().ID)
	if err != nil {
		return c.Send(replyOops)
	}
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(c.Text())
	if text == btnCancel.Text {
		//nolint:errcheck
		serviceDialog.End(ctx, c.Sender().ID)
		return c.Send("Operation cancelled.", flowMenu(c, ctx, state.Flow))
	}

	switch state.Flow {
	case models.FlowAddPromo:
		return stepAddPromo(c, ctx, serviceDialog, state, text)
	case models.FlowEditPromo:
		return stepEditPromo(c, ctx, serviceDialog, state, text)
	case models.FlowAddStaff:
		return stepAddStaff(c, ctx, serviceDialog, state, text)
	case models.FlowRedeemCode:
		return stepRedeemCode(c, ctx, serviceDialog, text)
	case models.FlowManualActivate:
		return stepManualActivate(c, ctx, serviceDialog, text)
	default:
		//nolint:errcheck
		serviceDialog.End(ctx, c.Sender().ID)
		return nil
	}
}

// flowMenu picks the keyboard to land on after a wizard ends.
func flowMenu(c tele.Context, ctx context.Context, flow string) *tele.ReplyMarkup {
	switch flow {
	case models.FlowAddPromo, models.FlowEditPromo:
		return menuPromoManagement
	case models.FlowAddStaff:
		return menuStaffManagement
	case models.FlowManualActivate:
		return menuAdmin
	case models.FlowRedeemCode:
		if _, menu := requireStaff(c, ctx); menu != nil {
			return menu
		}
		return menuMain
	default:
		return menuMain
	}
}

func stepAddPromo(c tele.Context, ctx context.Context, serviceDialog *services.ServiceDialog, state *models.DialogState, text string) error {
	servicePromo, err := getService[*services.ServicePromo](c)
	if err != nil {
		return c.Send(replyOops)
	}

	switch state.Step {
	case 0:
		if err := services.ValidatePromoName(text); err != nil {
			return c.Send("The name must not be empty. Enter the promo name:", menuCancel)
		}
		state.Name = text
		if _, err := serviceDialog.Save(ctx, c.Sender().ID, state.Next()); err != nil {
			return c.Send(replyOops)
		}
		return c.Send("Enter the promo description:", menuCancel)

	case 1:
		state.Description = text
		if _, err := serviceDialog.Save(ctx, c.Sender().ID, state.Next()); err != nil {
			return c.Send(replyOops)
		}
		return c.Send("Enter the activation limit (a positive number):", menuCancel)

	case 2:
		limit, err := strconv.Atoi(text)
		if err != nil || limit <= 0 {
			return c.Send("The limit must be a positive number. Try again:", menuCancel)
		}
		state.TotalLimit = limit
		if _, err := serviceDialog.Save(ctx, c.Sender().ID, state.Next()); err != nil {
			return c.Send(replyOops)
		}
		return c.Send("Enter the expiry date in DD.MM.YYYY format:", menuCancel)

	case 3:
		if !dates.Valid(text) {
			return c.Send("Invalid date. Use the DD.MM.YYYY format:", menuCancel)
		}
		expiresAt, err := dates.Parse(text)
		if err != nil {
			return c.Send("Invalid date. Use the DD.MM.YYYY format:", menuCancel)
		}
		if err := services.ValidatePromoExpiry(expiresAt, time.Now()); err != nil {
			return c.Send("The expiry date must be in the future. Try again:", menuCancel)
		}

		promo, err := servicePromo.CreatePromo(ctx, state.Name, state.Description, state.TotalLimit, expiresAt)
		if err != nil {
			//nolint:errcheck
			serviceDialog.End(ctx, c.Sender().ID)
			return c.Send(replyOops, menuPromoManagement)
		}

		//nolint:errcheck
		serviceDialog.End(ctx, c.Sender().ID)
		return c.Send(
			fmt.Sprintf("✅ Promo code created!\n\nName: %s\nDescription: %s\nLimit: %d\nValid until: %s",
				promo.Name, promo.Description, promo.TotalLimit, dates.Format(promo.ExpiresAt)),
			menuPromoManagement,
		)
	}

	//nolint:errcheck
	serviceDialog.End(ctx, c.Sender().ID)
	return c.Send(replyOops, menuPromoManagement)
}

const (
	editFieldName        = "name"
	editFieldDescription = "description"
	editFieldLimit       = "limit"
	editFieldExpiry      = "expiry"
)

func stepEditPromo(c tele.Context, ctx context.Context, serviceDialog *services.ServiceDialog, state *models.DialogState, text string) error {
	servicePromo, err := getService[*services.ServicePromo](c)
	if err != nil {
		return c.Send(replyOops)
	}

	switch state.Step {
	case 0:
		var prompt string
		switch text {
		case "1":
			state.EditField = editFieldName
			prompt = "Enter the new name:"
		case "2":
			state.EditField = editFieldDescription
			prompt = "Enter the new description:"
		case "3":
			state.EditField = editFieldLimit
			prompt = "Enter the new limit:"
		case "4":
			state.EditField = editFieldExpiry
			prompt = "Enter the new expiry date in DD.MM.YYYY format:"
		default:
			return c.Send("Enter a number from 1 to 4:", menuCancel)
		}
		if _, err := serviceDialog.Save(ctx, c.Sender().ID, state.Next()); err != nil {
			return c.Send(replyOops)
		}
		return c.Send(prompt, menuCancel)

	case 1:
		var editErr error
		switch state.EditField {
		case editFieldName:
			if err := services.ValidatePromoName(text); err != nil {
				return c.Send("The name must not be empty. Enter the new name:", menuCancel)
			}
			_, editErr = servicePromo.EditPromoName(ctx, state.PromoID, text)
		case editFieldDescription:
			_, editErr = servicePromo.EditPromoDescription(ctx, state.PromoID, text)
		case editFieldLimit:
			limit, err := strconv.Atoi(text)
			if err != nil || limit <= 0 {
				return c.Send("The limit must be a positive number. Try again:", menuCancel)
			}
			_, editErr = servicePromo.EditPromoLimit(ctx, state.PromoID, limit)
			if errors.Is(editErr, services.ErrLimitBelowUsage) {
				return c.Send("The limit cannot be lower than the number of codes already claimed. Enter a bigger number:", menuCancel)
			}
		case editFieldExpiry:
			if !dates.Valid(text) {
				return c.Send("Invalid date. Use the DD.MM.YYYY format:", menuCancel)
			}
			expiresAt, err := dates.Parse(text)
			if err != nil {
				return c.Send("Invalid date. Use the DD.MM.YYYY format:", menuCancel)
			}
			_, editErr = servicePromo.EditPromoExpiry(ctx, state.PromoID, expiresAt)
			if editErr != nil && !errors.Is(editErr, services.ErrPromoNotFound) {
				return c.Send("The expiry date must be in the future. Try again:", menuCancel)
			}
		}

		//nolint:errcheck
		serviceDialog.End(ctx, c.Sender().ID)
		if errors.Is(editErr, services.ErrPromoNotFound) {
			return c.Send("This promo code no longer exists.", menuPromoManagement)
		}
		if editErr != nil {
			return c.Send(replyOops, menuPromoManagement)
		}
		return c.Send("✅ Promo code updated.", menuPromoManagement)
	}

	//nolint:errcheck
	serviceDialog.End(ctx, c.Sender().ID)
	return c.Send(replyOops, menuPromoManagement)
}

func stepAddStaff(c tele.Context, ctx context.Context, serviceDialog *services.ServiceDialog, state *models.DialogState, text string) error {
	serviceStaff, err := getService[*services.ServiceStaff](c)
	if err != nil {
		return c.Send(replyOops)
	}

	switch state.Step {
	case 0:
		targetID, err := strconv.ParseInt(text, 10, 64)
		if err != nil || targetID <= 0 {
			return c.Send("The Telegram ID must be a number. Try again:", menuCancel)
		}
		if err := services.GuardSelfModify(c.Sender().ID, targetID); err != nil {
			//nolint:errcheck
			serviceDialog.End(ctx, c.Sender().ID)
			return c.Send("You cannot add yourself.", menuStaffManagement)
		}

		// resolve the profile through the API when the user is reachable,
		// fall back to typed-in names otherwise
		chat, err := c.Bot().ChatByID(targetID)
		if err == nil && chat != nil {
			staff, err := serviceStaff.AddStaff(ctx, c.Sender().ID, targetID, state.Role, chat.FirstName, chat.LastName, chat.Username)
			if err != nil {
				//nolint:errcheck
				serviceDialog.End(ctx, c.Sender().ID)
				return c.Send(replyOops, menuStaffManagement)
			}
			//nolint:errcheck
			serviceDialog.End(ctx, c.Sender().ID)
			return c.Send(
				fmt.Sprintf("✅ %s %s added.", roleTitle(staff.Role), staff.DisplayName()),
				menuStaffManagement,
			)
		}

		state.TargetID = targetID
		if _, err := serviceDialog.Save(ctx, c.Sender().ID, state.Next()); err != nil {
			return c.Send(replyOops)
		}
		return c.Send("Could not find this user in Telegram. Enter their first name:", menuCancel)

	case 1:
		if text == "" {
			return c.Send("The first name must not be empty. Try again:", menuCancel)
		}
		state.FirstName = text
		if _, err := serviceDialog.Save(ctx, c.Sender().ID, state.Next()); err != nil {
			return c.Send(replyOops)
		}
		return c.Send("Enter their last name (or \"No\" to skip):", menuCancel)

	case 2:
		lastName := text
		if strings.EqualFold(lastName, "no") {
			lastName = ""
		}

		staff, err := serviceStaff.AddStaff(ctx, c.Sender().ID, state.TargetID, state.Role, state.FirstName, lastName, "")
		if err != nil {
			//nolint:errcheck
			serviceDialog.End(ctx, c.Sender().ID)
			return c.Send(replyOops, menuStaffManagement)
		}

		//nolint:errcheck
		serviceDialog.End(ctx, c.Sender().ID)
		return c.Send(
			fmt.Sprintf("✅ %s %s added.", roleTitle(staff.Role), staff.DisplayName()),
			menuStaffManagement,
		)
	}

	//nolint:errcheck
	serviceDialog.End(ctx, c.Sender().ID)
	return c.Send(replyOops, menuStaffManagement)
}

func stepRedeemCode(c tele.Context, ctx context.Context, serviceDialog *services.ServiceDialog, text string) error {
	staff, menu := requireStaff(c, ctx)
	if staff == nil {
		//nolint:errcheck
		serviceDialog.End(ctx, c.Sender().ID)
		return c.Send("You do not have access to code activation.", menuMain)
	}

	//nolint:errcheck
	serviceDialog.End(ctx, c.Sender().ID)
	return finishRedeem(c, ctx, staff, menu, text)
}

// stepManualActivate burns a code outside the normal claim path. A code that
// matches an existing claim goes through the regular redemption; an unknown
// code gets attributed to a promo the admin picks inline.
func stepManualActivate(c tele.Context, ctx context.Context, serviceDialog *services.ServiceDialog, text string) error {
	staff, _ := requireStaff(c, ctx)
	if staff == nil || staff.Role != models.RoleAdmin {
		//nolint:errcheck
		serviceDialog.End(ctx, c.Sender().ID)
		return c.Send("You do not have access to manual activation.", menuMain)
	}

	serviceRedemption, err := getService[*services.ServiceRedemption](c)
	if err != nil {
		return c.Send(replyOops)
	}

	code := strings.ToUpper(text)

	activation, err := serviceRedemption.HasActivation(ctx, code)
	if err != nil {
		//nolint:errcheck
		serviceDialog.End(ctx, c.Sender().ID)
		return c.Send(replyOops, menuAdmin)
	}
	if activation != nil {
		//nolint:errcheck
		serviceDialog.End(ctx, c.Sender().ID)
		return c.Send(fmt.Sprintf("⚠️ Promo code \"%s\" has already been activated.", code), menuAdmin)
	}

	claim, err := serviceRedemption.HasClaim(ctx, code)
	if err != nil {
		//nolint:errcheck
		serviceDialog.End(ctx, c.Sender().ID)
		return c.Send(replyOops, menuAdmin)
	}
	if claim != nil {
		//nolint:errcheck
		serviceDialog.End(ctx, c.Sender().ID)
		return finishRedeem(c, ctx, staff, menuAdmin, code)
	}

	servicePromo, err := getService[*services.ServicePromo](c)
	if err != nil {
		return c.Send(replyOops)
	}

	promos, err := servicePromo.ListAvailable(ctx)
	if err != nil {
		//nolint:errcheck
		serviceDialog.End(ctx, c.Sender().ID)
		return c.Send(replyOops, menuAdmin)
	}

	//nolint:errcheck
	serviceDialog.End(ctx, c.Sender().ID)

	if len(promos) == 0 {
		return c.Send("This code is unknown and there are no active promos to attribute it to.", menuAdmin)
	}

	return c.Send(
		fmt.Sprintf("Code \"%s\" was not issued by the bot. Pick the promo to attribute it to:", code),
		activationPickKeyboard(promos, code),
	)
}
