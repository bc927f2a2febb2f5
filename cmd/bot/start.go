package main

import (
	"context"
	"fmt"
	"time"

	tele "gopkg.in/telebot.v3"

	"promobot/internal/services"
)

const replyOops = "Something went wrong. Please try again later."

func registerStartHandlers(b *tele.Bot) {
	b.Handle("/start", commandStart)
	b.Handle("/admin", commandAdmin)
	b.Handle("/seller", commandSeller)
	b.Handle("/stats", commandStats)
	b.Handle("/myid", commandMyID)
	b.Handle(&btnExitStaffMode, func(c tele.Context) error {
		return c.Send("You are back in user mode.", menuMain)
	})
}

func commandStart(c tele.Context) error {
	serviceUser, err := getService[*services.ServiceUser](c)
	if err != nil {
		return c.Send(replyOops)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := serviceUser.FindOrCreateUser(ctx, c.Sender())
	if err != nil {
		return c.Send(replyOops)
	}

	return c.Send(fmt.Sprintf("Hi, %s! Welcome to the promo code bot.", user.FirstName), menuMain)
}

// commandMyID tells users their Telegram id, the value an admin needs for the
// add-staff wizard.
func commandMyID(c tele.Context) error {
	return c.Send(myIDReply(c.Sender().ID))
}

func myIDReply(id int64) string {
	return fmt.Sprintf("Your Telegram ID: %d", id)
}

func commandAdmin(c tele.Context) error {
	serviceStaff, err := getService[*services.ServiceStaff](c)
	if err != nil {
		return c.Send(replyOops)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if !serviceStaff.IsAdmin(ctx, c.Sender().ID) {
		return c.Send("You do not have access to the admin panel.")
	}

	return c.Send("Welcome to the admin panel.", menuAdmin)
}

// commandSeller opens the seller panel; admins get in too.
func commandSeller(c tele.Context) error {
	serviceStaff, err := getService[*services.ServiceStaff](c)
	if err != nil {
		return c.Send(replyOops)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id := c.Sender().ID
	if !serviceStaff.IsSeller(ctx, id) && !serviceStaff.IsAdmin(ctx, id) {
		return c.Send("You do not have access to the seller panel.")
	}

	return c.Send("Welcome to the seller panel.", menuSeller)
}

func commandStats(c tele.Context) error {
	serviceStaff, err := getService[*services.ServiceStaff](c)
	if err != nil {
		return c.Send(replyOops)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if !serviceStaff.IsAdmin(ctx, c.Sender().ID) {
		return nil
	}

	serviceUser, err := getService[*services.ServiceUser](c)
	if err != nil {
		return c.Send(replyOops)
	}

	count, err := serviceUser.CountUsers(ctx)
	if err != nil {
		return c.Send(replyOops)
	}

	return c.Send(fmt.Sprintf("Total users: %d", count))
}
