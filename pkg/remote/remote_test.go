package remote

import "testing"

func TestParseURL(t *testing.T) {
	tests := []struct {
		in      string
		bucket  string
		prefix  string
		wantErr bool
	}{
		{"s3://reports/site-a", "reports", "site-a", false},
		{"s3://reports", "reports", "", false},
		{"s3://reports/deep/prefix/", "reports", "deep/prefix", false},
		{"http://reports", "", "", true},
		{"s3://", "", "", true},
	}

	for _, tt := range tests {
		bucket, prefix, err := ParseURL(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", tt.in, err)
			continue
		}
		if bucket != tt.bucket || prefix != tt.prefix {
			t.Errorf("%s = %q/%q, want %q/%q", tt.in, bucket, prefix, tt.bucket, tt.prefix)
		}
	}
}

func TestClientKeyJoinsPrefix(t *testing.T) {
	c := &Client{cfg: Config{Prefix: "site-a"}}
	if got := c.key("demo_2026_03_15.json"); got != "site-a/demo_2026_03_15.json" {
		t.Errorf("key = %q", got)
	}
	c.cfg.Prefix = ""
	if got := c.key("demo.json"); got != "demo.json" {
		t.Errorf("key without prefix = %q", got)
	}
}
