package gcs

import "testing"

func TestParseURI(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{name: "bucket and object", uri: "gs://eval-datasets/receipts/v2", wantBucket: "eval-datasets", wantObject: "receipts/v2"},
		{name: "bucket only", uri: "gs://eval-datasets", wantBucket: "eval-datasets"},
		{name: "trailing slash prefix", uri: "gs://eval-datasets/receipts/", wantBucket: "eval-datasets", wantObject: "receipts/"},
		{name: "not a gcs uri", uri: "/local/dir", wantErr: true},
		{name: "empty bucket", uri: "gs:///object", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, object, err := ParseURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseURI(%q) error = %v, wantErr %t", tt.uri, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if bucket != tt.wantBucket || object != tt.wantObject {
				t.Errorf("ParseURI(%q) = %q, %q, want %q, %q", tt.uri, bucket, object, tt.wantBucket, tt.wantObject)
			}
		})
	}
}

func TestIsURI(t *testing.T) {
	if !IsURI("gs://bucket/prefix") {
		t.Error("IsURI(gs://bucket/prefix) = false, want true")
	}
	if IsURI("./datasets/receipts") {
		t.Error("IsURI(./datasets/receipts) = true, want false")
	}
}
