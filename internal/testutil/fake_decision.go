package testutil

import "fmt"

// FakeDecision answers prompts from scripted queues and records what was asked.
type FakeDecision struct {
	Selections []int
	Confirms   []bool

	SelectPrompts  []string
	SelectChoices  [][]string
	ConfirmPrompts []string
}

func (d *FakeDecision) Select(prompt string, choices []string) (int, error) {
	d.SelectPrompts = append(d.SelectPrompts, prompt)
	d.SelectChoices = append(d.SelectChoices, append([]string(nil), choices...))

	if len(d.Selections) == 0 {
		return 0, fmt.Errorf("unexpected selection prompt %q", prompt)
	}
	idx := d.Selections[0]
	d.Selections = d.Selections[1:]
	return idx, nil
}

func (d *FakeDecision) Confirm(prompt string) (bool, error) {
	d.ConfirmPrompts = append(d.ConfirmPrompts, prompt)

	if len(d.Confirms) == 0 {
		return false, fmt.Errorf("unexpected confirmation prompt %q", prompt)
	}
	answer := d.Confirms[0]
	d.Confirms = d.Confirms[1:]
	return answer, nil
}
