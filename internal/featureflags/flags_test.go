package featureflags

import "testing"

func TestEnabled(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", false},
		{"true", true},
		{"TRUE", true},
		{" yes ", true},
		{"1", true},
		{"on", true},
		{"0", false},
		{"off", false},
		{"maybe", false},
	}

	for _, tt := range tests {
		t.Setenv("FLAG_EXCLUSIVE_BID_ACCEPT", tt.value)
		if got := Enabled(ExclusiveBidAccept); got != tt.want {
			t.Errorf("FLAG_EXCLUSIVE_BID_ACCEPT=%q: got %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestEnvKey(t *testing.T) {
	if got := envKey("exclusive-bid-accept"); got != "FLAG_EXCLUSIVE_BID_ACCEPT" {
		t.Errorf("unexpected key %q", got)
	}
}
