package main

import "testing"

func TestMyIDReply(t *testing.T) {
	if got := myIDReply(123456789); got != "Your Telegram ID: 123456789" {
		t.Errorf("got %q", got)
	}
}
