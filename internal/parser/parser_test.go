package parser

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		format   Format
		wantName string
		wantErr  bool
	}{
		{FormatPostbank, "Postbank", false},
		{"POSTBANK", "Postbank", false},
		{"", "Postbank", false},
		{"metro", "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			p, err := New(tt.format)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.BankName() != tt.wantName {
				t.Errorf("got %q, want %q", p.BankName(), tt.wantName)
			}
		})
	}
}
