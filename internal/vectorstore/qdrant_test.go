package vectorstore

import (
	"net/url"
	"strconv"
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

// TestQdrantURLParsing tests the URL parsing logic used by NewQdrantStore
// without creating a real client.
func TestQdrantURLParsing(t *testing.T) {
	tests := []struct {
		name     string
		urlStr   string
		wantHost string
		wantPort int
		wantTLS  bool
	}{
		{
			name:     "default local URL",
			urlStr:   "http://localhost:6333",
			wantHost: "localhost",
			wantPort: 6334, // gRPC port is HTTP port + 1
		},
		{
			name:     "custom port",
			urlStr:   "http://qdrant.internal:9000",
			wantHost: "qdrant.internal",
			wantPort: 9001,
		},
		{
			name:     "no port falls back to gRPC default",
			urlStr:   "http://localhost",
			wantHost: "localhost",
			wantPort: 6334,
		},
		{
			name:     "https cloud URL enables TLS",
			urlStr:   "https://cluster.cloud.qdrant.io:6333",
			wantHost: "cluster.cloud.qdrant.io",
			wantPort: 6334,
			wantTLS:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsedURL, err := url.Parse(tt.urlStr)
			if err != nil {
				t.Fatalf("failed to parse URL: %v", err)
			}

			host := parsedURL.Hostname()
			if host == "" {
				host = "localhost"
			}
			port := 6334
			if parsedURL.Port() != "" {
				if httpPort, err := strconv.Atoi(parsedURL.Port()); err == nil {
					port = httpPort + 1
				}
			}

			if host != tt.wantHost {
				t.Errorf("host = %q, want %q", host, tt.wantHost)
			}
			if port != tt.wantPort {
				t.Errorf("port = %d, want %d", port, tt.wantPort)
			}
			if tls := parsedURL.Scheme == "https"; tls != tt.wantTLS {
				t.Errorf("TLS = %v, want %v", tls, tt.wantTLS)
			}
		})
	}
}

func TestConvertPayloadToMap(t *testing.T) {
	payload := map[string]*qdrant.Value{
		"doc_id":      {Kind: &qdrant.Value_StringValue{StringValue: "doc-1"}},
		"chunk_id":    {Kind: &qdrant.Value_IntegerValue{IntegerValue: 3}},
		"score":       {Kind: &qdrant.Value_DoubleValue{DoubleValue: 0.42}},
		"processed":   {Kind: &qdrant.Value_BoolValue{BoolValue: true}},
		"nil_skipped": nil,
	}

	meta := convertPayloadToMap(payload)

	if got := meta["doc_id"]; got != "doc-1" {
		t.Errorf("doc_id = %v, want doc-1", got)
	}
	if got := meta["chunk_id"]; got != int64(3) {
		t.Errorf("chunk_id = %v (%T), want int64(3)", got, got)
	}
	if got := meta["score"]; got != 0.42 {
		t.Errorf("score = %v, want 0.42", got)
	}
	if got := meta["processed"]; got != true {
		t.Errorf("processed = %v, want true", got)
	}
	if _, ok := meta["nil_skipped"]; ok {
		t.Error("nil payload values must be skipped")
	}
}
