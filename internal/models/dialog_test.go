package models

import "testing"

func TestDialogStateNext(t *testing.T) {
	state := &DialogState{Flow: FlowAddPromo}

	for want := 1; want <= 3; want++ {
		if got := state.Next(); got.Step != want {
			t.Fatalf("step = %d, want %d", got.Step, want)
		}
	}
}

func TestDialogStateNextKeepsInput(t *testing.T) {
	state := &DialogState{Flow: FlowAddPromo, Name: "Summer", TotalLimit: 5}
	state.Next()

	if state.Name != "Summer" || state.TotalLimit != 5 {
		t.Errorf("collected input lost across steps: %+v", state)
	}
}
