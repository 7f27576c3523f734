package amqp

import "testing"

func TestImportJobMessage_RoundTrip(t *testing.T) {
	msg := NewFileImportJob("/data/uploads/projects.xlsx")
	if msg.JobID == "" {
		t.Fatal("job id must be generated")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := ImportJobMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.JobID != msg.JobID || got.Source != SourceFile || got.Path != msg.Path {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, msg)
	}
}

func TestImportJobMessage_Validate(t *testing.T) {
	cases := []struct {
		name string
		msg  *ImportJobMessage
		ok   bool
	}{
		{"file with path", NewFileImportJob("/tmp/x.xlsx"), true},
		{"sheet with id", NewSheetImportJob("abc123", "Dự án"), true},
		{"file without path", &ImportJobMessage{JobID: "j", Source: SourceFile}, false},
		{"sheet without id", &ImportJobMessage{JobID: "j", Source: SourceSheet}, false},
		{"unknown source", &ImportJobMessage{JobID: "j", Source: "ftp"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestImportJobMessageFromJSON_Malformed(t *testing.T) {
	if _, err := ImportJobMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
