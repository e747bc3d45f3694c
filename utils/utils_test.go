package utils

import "testing"

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hollow Knight":         "hollow_knight",
		"Pokémon: Red & Blue!":  "pokémon_red_blue",
		"  spaced   out  ":      "spaced_out",
		"___":                   "",
		"NieR:Automata":         "nier_automata",
		"Final Fantasy VII":     "final_fantasy_vii",
		"100% Orange Juice":     "100_orange_juice",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUrlQuery(t *testing.T) {
	if got := UrlQuery("elden ring trophy list"); got != "elden+ring+trophy+list" {
		t.Fatalf("unexpected query: %q", got)
	}
}
