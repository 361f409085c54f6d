package queue

import "testing"

func TestDecodeJob(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "valid", body: `{"job_id":"abc123"}`, want: "abc123"},
		{name: "missing id", body: `{}`, wantErr: true},
		{name: "empty id", body: `{"job_id":""}`, wantErr: true},
		{name: "not json", body: `job_id=abc`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeJob([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if msg.JobID != tt.want {
				t.Fatalf("expected job id %q, got %q", tt.want, msg.JobID)
			}
		})
	}
}
