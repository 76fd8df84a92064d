package fixture

import "testing"

func TestNormalizeStatus(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":          StatusScheduled,
		"NS":        StatusScheduled,
		"1H":        StatusLive,
		"HT":        StatusLive,
		"in_play":   StatusLive,
		"FT":        StatusFinished,
		"AET":       StatusFinished,
		"PST":       StatusCancelled,
		"abandoned": StatusCancelled,
		"???":       StatusScheduled,
	}

	for input, want := range cases {
		if got := NormalizeStatus(input); got != want {
			t.Errorf("NormalizeStatus(%q)=%q, want %q", input, got, want)
		}
	}
}

func TestCanTransition_NeverRegresses(t *testing.T) {
	t.Parallel()

	allowed := [][2]string{
		{StatusScheduled, StatusLive},
		{StatusScheduled, StatusFinished},
		{StatusScheduled, StatusCancelled},
		{StatusLive, StatusFinished},
		{StatusLive, StatusLive},
	}
	for _, pair := range allowed {
		if !CanTransition(pair[0], pair[1]) {
			t.Errorf("CanTransition(%s, %s)=false, want true", pair[0], pair[1])
		}
	}

	forbidden := [][2]string{
		{StatusLive, StatusScheduled},
		{StatusFinished, StatusLive},
		{StatusFinished, StatusScheduled},
		{StatusCancelled, StatusScheduled},
		{StatusCancelled, StatusLive},
		{StatusLive, StatusCancelled},
	}
	for _, pair := range forbidden {
		if CanTransition(pair[0], pair[1]) {
			t.Errorf("CanTransition(%s, %s)=true, want false", pair[0], pair[1])
		}
	}
}
