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

func registerPromoHandlers(b *tele.Bot) {
	b.Handle(&btnPromos, handlePromoList)
	b.Handle(&btnMyPromos, handleMyPromos)
	b.Handle(&btnClaim, handleClaim)
}

func handlePromoList(c tele.Context) error {
	servicePromo, err := getService[*services.ServicePromo](c)
	if err != nil {
		return c.Send(replyOops)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	promos, err := servicePromo.ListAvailable(ctx)
	if err != nil {
		return c.Send(replyOops, menuMain)
	}

	if len(promos) == 0 {
		return c.Send("There are no active promo codes at the moment.", menuMain)
	}

	return c.Send("Pick a promo code from the list:", claimKeyboard(promos))
}

func handleMyPromos(c tele.Context) error {
	servicePromo, err := getService[*services.ServicePromo](c)
	if err != nil {
		return c.Send(replyOops)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	claims, err := servicePromo.UserClaims(ctx, c.Sender().ID)
	if err != nil {
		return c.Send(replyOops, menuMain)
	}

	if len(claims) == 0 {
		return c.Send("You have no promo codes yet.", menuMain)
	}

	now := time.Now()
	var sb strings.Builder
	sb.WriteString("Your promo codes:\n\n")
	for _, claim := range claims {
		writeClaim(&sb, claim, now)
	}

	return c.Send(sb.String(), menuMain)
}

// writeClaim renders one history entry. A claim can outlive its promo, the
// dangling reference shows up as removed instead of breaking the list.
func writeClaim(sb *strings.Builder, claim *models.Claim, now time.Time) {
	if claim.Promo == nil {
		fmt.Fprintf(sb, "🔄 Code: %s\n", claim.Code)
		sb.WriteString("The promo code was removed from the system\n")
		fmt.Fprintf(sb, "Claimed: %s\n", dates.Format(claim.ClaimedAt))
		if claim.Redeemed && claim.RedeemedAt != nil {
			fmt.Fprintf(sb, "Status: ✅ Activated %s\n", dates.Format(*claim.RedeemedAt))
		} else {
			sb.WriteString("Status: ⏳ Awaiting activation\n")
		}
		sb.WriteString("\n")
		return
	}

	promo := claim.Promo
	fmt.Fprintf(sb, "%s %s\n", promoStatusIcon(promo, now), promo.Name)
	fmt.Fprintf(sb, "Code: %s\n", claim.Code)
	fmt.Fprintf(sb, "Description: %s\n", promo.Description)
	fmt.Fprintf(sb, "Valid until: %s\n", dates.Format(promo.ExpiresAt))
	fmt.Fprintf(sb, "Claimed: %s\n", dates.Format(claim.ClaimedAt))
	if claim.Redeemed && claim.RedeemedAt != nil {
		fmt.Fprintf(sb, "Status: 🔐 Used %s\n", dates.Format(*claim.RedeemedAt))
	} else {
		sb.WriteString("Status: 🔓 Ready to use\n")
	}
	sb.WriteString("\n")
}

func handleClaim(c tele.Context) error {
	promoID, err := strconv.ParseInt(strings.TrimSpace(c.Data()), 10, 64)
	if err != nil {
		return c.Send(replyOops, menuMain)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	serviceUser, err := getService[*services.ServiceUser](c)
	if err != nil {
		return c.Send(replyOops)
	}

	user, err := serviceUser.FindOrCreateUser(ctx, c.Sender())
	if err != nil {
		return c.Send(replyOops, menuMain)
	}

	servicePromo, err := getService[*services.ServicePromo](c)
	if err != nil {
		return c.Send(replyOops)
	}

	claim, err := servicePromo.ClaimPromo(ctx, user, promoID)
	if err != nil {
		return c.Send(claimErrorReply(err), menuMain)
	}

	promo, err := servicePromo.FindPromoByID(ctx, promoID)
	if err != nil {
		return c.Send(fmt.Sprintf("Your promo code: %s", claim.Code), menuMain)
	}

	return c.Send(
		fmt.Sprintf("Your promo code: %s\n\nDescription: %s\nValid until: %s",
			claim.Code, promo.Description, dates.Format(promo.ExpiresAt)),
		menuMain,
	)
}

func claimErrorReply(err error) string {
	switch {
	case errors.Is(err, services.ErrAlreadyClaimed):
		return "You have already claimed this promo code."
	case errors.Is(err, services.ErrMembershipRequired):
		return "To claim a promo code you must be a member of our group."
	case errors.Is(err, services.ErrPromoNotFound):
		return "Promo code not found."
	case errors.Is(err, services.ErrPromoInactive):
		return "This promo code is no longer active."
	case errors.Is(err, services.ErrPromoExpired):
		return "This promo code has expired."
	case errors.Is(err, services.ErrLimitExhausted):
		return "This promo code's limit has been exhausted."
	case errors.Is(err, services.ErrClaimLock):
		return "Your previous claim is still being processed. Try again in a moment."
	case errors.Is(err, services.ErrClaimConflict):
		return "This promo code was updated just now. Try again in a moment."
	default:
		return replyOops
	}
}
