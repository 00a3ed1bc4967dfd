package server

import "testing"

func TestNormaliseEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		wantHost   string
		wantSecure bool
		wantErr    bool
	}{
		{"bare host:port", "minio:9000", "minio:9000", false, false},
		{"http scheme", "http://minio:9000", "minio:9000", false, false},
		{"https scheme", "https://storage.example.com", "storage.example.com", true, false},
		{"trailing slash ok", "http://minio:9000/", "minio:9000", false, false},
		{"path rejected", "http://minio:9000/bucket", "", false, true},
		{"empty rejected", "", "", false, true},
		{"whitespace rejected", "   ", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, secure, err := normaliseEndpoint(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if host != tt.wantHost || secure != tt.wantSecure {
				t.Errorf("got (%q, %v), want (%q, %v)", host, secure, tt.wantHost, tt.wantSecure)
			}
		})
	}
}

func TestNewMinioStore_IncompleteConfig(t *testing.T) {
	cases := [][4]string{
		{"", "key", "secret", "bucket"},
		{"minio:9000", "", "secret", "bucket"},
		{"minio:9000", "key", "", "bucket"},
		{"minio:9000", "key", "secret", ""},
	}
	for _, c := range cases {
		if _, err := NewMinioStore(c[0], c[1], c[2], c[3]); err == nil {
			t.Errorf("expected error for config %v", c)
		}
	}
}
