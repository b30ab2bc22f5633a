package hostconfig

import "testing"

func TestParseAuthDescriptor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    AuthDescriptor
		wantErr bool
	}{
		{"pfp with both fields", "pfp:Johnny Doe,It's me.", AuthDescriptor{
			Method: AuthMethodPFP, FriendlyName: "Johnny Doe", FriendlyText: "It's me.",
		}, false},
		{"none", "none", AuthDescriptor{Method: AuthMethodNone}, false},
		{"case insensitive method", "NONE", AuthDescriptor{Method: AuthMethodNone}, false},
		{"pfp missing text", "pfp:OnlyName", AuthDescriptor{}, true},
		{"unknown method", "srp:foo,bar", AuthDescriptor{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAuthDescriptor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAuthDescriptor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseAuthDescriptor(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseChatDescriptor(t *testing.T) {
	got, err := ParseChatDescriptor("Johnny, away")
	if err != nil {
		t.Fatalf("ParseChatDescriptor: %v", err)
	}
	if got.FriendlyName != "Johnny" || got.StatusText != "away" {
		t.Errorf("got %+v, want {Johnny away}", got)
	}

	if _, err := ParseChatDescriptor(""); err == nil {
		t.Fatal("expected an error for an empty chat descriptor")
	}
}

func TestParseValidatesRequiredFields(t *testing.T) {
	yaml := []byte(`
auth: "pfp:Johnny,hello"
`)
	if _, err := Parse(yaml); err == nil {
		t.Fatal("expected an error when connect_addr is missing")
	}
}

func TestParseFullDocument(t *testing.T) {
	doc := []byte(`
connect_addr: "127.0.0.1:4489"
verbose: true
auth: "pfp:Johnny Doe,It's me."
chat:
  friendly_name: Johnny
  status_text: away
on_sync_message: "hi there"
on_clipboard_ready_message: "got it"
`)
	cfg, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.ConnectAddr != "127.0.0.1:4489" {
		t.Errorf("ConnectAddr = %q", cfg.ConnectAddr)
	}
	if !cfg.Verbose {
		t.Error("expected Verbose = true")
	}
	if cfg.Chat == nil || cfg.Chat.FriendlyName != "Johnny" {
		t.Fatalf("Chat = %+v", cfg.Chat)
	}
	auth, err := cfg.ParsedAuth()
	if err != nil {
		t.Fatalf("ParsedAuth: %v", err)
	}
	if auth.Method != AuthMethodPFP || auth.FriendlyName != "Johnny Doe" {
		t.Errorf("ParsedAuth() = %+v", auth)
	}
}

func TestChatEntryUnmarshalsFromScalar(t *testing.T) {
	doc := []byte(`
connect_addr: "127.0.0.1:4489"
auth: "none"
chat: "Johnny,back soon"
`)
	cfg, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Chat == nil || cfg.Chat.FriendlyName != "Johnny" || cfg.Chat.StatusText != "back soon" {
		t.Fatalf("Chat = %+v", cfg.Chat)
	}
}
