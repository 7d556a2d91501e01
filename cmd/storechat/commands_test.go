package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"storechat/internal/app"
	"storechat/internal/config"
	"storechat/internal/logging"
	"storechat/internal/store"
	"storechat/internal/testutil"
	"storechat/internal/types"
)

func TestBuildCommandsRegistersEverySubcommand(t *testing.T) {
	commands := buildCommands(commandWiring{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}})
	for _, name := range []string{"chat", "watch", "messages", "send", "close", "orders", "transcripts", "login", "logout", "config", "version"} {
		if _, ok := commands[name]; !ok {
			t.Fatalf("expected %q to be registered", name)
		}
	}
}

func TestMessagesCommandHidesClosedByDefault(t *testing.T) {
	fake := &fakeCommandClient{FakeBackend: &testutil.FakeBackend{Messages: []types.Message{
		{ID: 1, Text: "where is my parcel", Sender: types.SenderCustomer, Status: types.MessageStatusPending},
		{ID: 2, Text: "old question", Sender: types.SenderCustomer, Status: types.MessageStatusClosed},
	}}}
	stdout := &bytes.Buffer{}
	cmd := NewMessagesCommand(stdout, &bytes.Buffer{}, defaultConfigLoader, fixedFactory(fake))

	if err := cmd.Run(nil); err != nil {
		t.Fatalf("expected messages to succeed, got err=%v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "where is my parcel") {
		t.Fatalf("expected open message in output, got %q", out)
	}
	if strings.Contains(out, "old question") {
		t.Fatalf("expected closed message to be hidden, got %q", out)
	}
}

func TestMessagesCommandJSONIncludesClosedWithAll(t *testing.T) {
	fake := &fakeCommandClient{FakeBackend: &testutil.FakeBackend{Messages: []types.Message{
		{ID: 1, Text: "hi", Sender: types.SenderCustomer, Status: types.MessageStatusPending},
		{ID: 2, Text: "old", Sender: types.SenderCustomer, Status: types.MessageStatusClosed},
	}}}
	stdout := &bytes.Buffer{}
	cmd := NewMessagesCommand(stdout, &bytes.Buffer{}, defaultConfigLoader, fixedFactory(fake))

	if err := cmd.Run([]string{"--all", "--json"}); err != nil {
		t.Fatalf("expected messages to succeed, got err=%v", err)
	}
	var items []map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &items); err != nil {
		t.Fatalf("expected valid json output, got err=%v, raw=%q", err, stdout.String())
	}
	if len(items) != 2 {
		t.Fatalf("expected two messages, got %d", len(items))
	}
}

func TestSendCommandAttachesOrderAndSkipsTelegram(t *testing.T) {
	fake := &fakeCommandClient{FakeBackend: &testutil.FakeBackend{}}
	stdout := &bytes.Buffer{}
	cmd := NewSendCommand(stdout, &bytes.Buffer{}, defaultConfigLoader, fixedFactory(fake))

	if err := cmd.Run([]string{"--order-id", "7", "--skip-telegram", "where", "is", "it"}); err != nil {
		t.Fatalf("expected send to succeed, got err=%v", err)
	}
	if len(fake.Sent) != 1 {
		t.Fatalf("expected one sent message, got %d", len(fake.Sent))
	}
	req := fake.Sent[0]
	if req.Message != "where is it" || req.OrderID == nil || *req.OrderID != 7 || !req.SkipTelegram {
		t.Fatalf("unexpected request: %+v", req)
	}
	if strings.TrimSpace(stdout.String()) != "sent message 1" {
		t.Fatalf("unexpected output %q", stdout.String())
	}
}

func TestSendCommandSkipsTelegramForBotOpeners(t *testing.T) {
	fake := &fakeCommandClient{FakeBackend: &testutil.FakeBackend{}}
	cmd := NewSendCommand(&bytes.Buffer{}, &bytes.Buffer{}, defaultConfigLoader, fixedFactory(fake))

	if err := cmd.Run([]string{"I", "need", "help", "with", "my", "order"}); err != nil {
		t.Fatalf("expected send to succeed, got err=%v", err)
	}
	if err := cmd.Run([]string{"my", "parcel", "never", "arrived"}); err != nil {
		t.Fatalf("expected send to succeed, got err=%v", err)
	}
	if len(fake.Sent) != 2 {
		t.Fatalf("expected two sent messages, got %d", len(fake.Sent))
	}
	if !fake.Sent[0].SkipTelegram {
		t.Fatalf("expected bot opener to skip telegram: %+v", fake.Sent[0])
	}
	if fake.Sent[1].SkipTelegram {
		t.Fatalf("expected free text to notify staff: %+v", fake.Sent[1])
	}
}

func TestSendCommandRequiresText(t *testing.T) {
	cmd := NewSendCommand(&bytes.Buffer{}, &bytes.Buffer{}, defaultConfigLoader, fixedFactory(&fakeCommandClient{FakeBackend: &testutil.FakeBackend{}}))
	err := cmd.Run([]string{"   "})
	if err == nil || !strings.Contains(err.Error(), "requires a message") {
		t.Fatalf("expected message validation error, got %v", err)
	}
}

func TestCloseCommandReportsFailedIDs(t *testing.T) {
	fake := &fakeCommandClient{FakeBackend: &testutil.FakeBackend{
		CloseErr: map[int64]error{2: errors.New("boom")},
	}}
	stdout := &bytes.Buffer{}
	cmd := NewCloseCommand(stdout, &bytes.Buffer{}, defaultConfigLoader, fixedFactory(fake), nil)

	err := cmd.Run([]string{"1", "2"})
	if err == nil || !strings.Contains(err.Error(), "failed to close 2") {
		t.Fatalf("expected failure for id 2, got %v", err)
	}
	if !strings.Contains(stdout.String(), "closed 1 of 2") {
		t.Fatalf("unexpected output %q", stdout.String())
	}
	if closed := fake.ClosedIDs(); len(closed) != 1 || closed[0] != 1 {
		t.Fatalf("expected id 1 to be closed, got %v", closed)
	}
}

func TestCloseCommandRejectsInvalidIDs(t *testing.T) {
	cmd := NewCloseCommand(&bytes.Buffer{}, &bytes.Buffer{}, defaultConfigLoader, fixedFactory(&fakeCommandClient{FakeBackend: &testutil.FakeBackend{}}), nil)
	for _, args := range [][]string{nil, {"abc"}, {"0"}} {
		if err := cmd.Run(args); err == nil {
			t.Fatalf("expected error for args %v", args)
		}
	}
}

func TestCloseConversationEndsActiveChat(t *testing.T) {
	fake := &fakeCommandClient{FakeBackend: &testutil.FakeBackend{Messages: []types.Message{
		{ID: 1, Text: "my parcel is late", Sender: types.SenderCustomer, Status: types.MessageStatusPending},
		{ID: 2, Text: "Let me check that for you", Sender: types.SenderAdmin, Status: types.MessageStatusReplied},
	}}}
	stdout := &bytes.Buffer{}
	cmd := NewCloseCommand(stdout, &bytes.Buffer{}, defaultConfigLoader, fixedFactory(fake), nil)

	if err := cmd.Run([]string{"--conversation"}); err != nil {
		t.Fatalf("expected close to succeed, got err=%v", err)
	}
	if got := fake.ClosedIDs(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("expected both messages closed, got %v", got)
	}
	if strings.TrimSpace(stdout.String()) != "conversation ended" {
		t.Fatalf("unexpected output %q", stdout.String())
	}
}

func TestCloseConversationClearsEndedChat(t *testing.T) {
	openStore := tempStoreFactory(t)
	fake := &fakeCommandClient{FakeBackend: &testutil.FakeBackend{Messages: []types.Message{
		{ID: 1, Text: "thanks", Sender: types.SenderCustomer, Status: types.MessageStatusPending},
		{ID: 2, Text: "Goodbye and take care!", Sender: types.SenderAdmin, Status: types.MessageStatusReplied},
	}}}
	stdout := &bytes.Buffer{}
	cmd := NewCloseCommand(stdout, &bytes.Buffer{}, defaultConfigLoader, fixedFactory(fake), openStore)

	if err := cmd.Run([]string{"--conversation"}); err != nil {
		t.Fatalf("expected close to succeed, got err=%v", err)
	}
	if got := fake.ClosedIDs(); len(got) != 2 {
		t.Fatalf("expected archived messages closed, got %v", got)
	}
	if strings.TrimSpace(stdout.String()) != "cleared ended conversation" {
		t.Fatalf("unexpected output %q", stdout.String())
	}

	repo, err := openStore(true)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer repo.Close()
	transcripts, err := repo.Transcripts().List(context.Background(), 0)
	if err != nil || len(transcripts) != 1 {
		t.Fatalf("expected the ended conversation to be archived, got %d err=%v", len(transcripts), err)
	}
}

func TestCloseConversationWithoutMessages(t *testing.T) {
	fake := &fakeCommandClient{FakeBackend: &testutil.FakeBackend{}}
	stdout := &bytes.Buffer{}
	cmd := NewCloseCommand(stdout, &bytes.Buffer{}, defaultConfigLoader, fixedFactory(fake), nil)

	if err := cmd.Run([]string{"--conversation"}); err != nil {
		t.Fatalf("expected close to succeed, got err=%v", err)
	}
	if strings.TrimSpace(stdout.String()) != "no active conversation" {
		t.Fatalf("unexpected output %q", stdout.String())
	}
	if len(fake.ClosedIDs()) != 0 {
		t.Fatalf("expected nothing closed")
	}
	if err := cmd.Run([]string{"--conversation", "3"}); err == nil {
		t.Fatalf("expected ids to be rejected with --conversation")
	}
}

func TestOrdersCommandFormatsTotals(t *testing.T) {
	fake := &fakeCommandClient{FakeBackend: &testutil.FakeBackend{Orders: []types.Order{
		{ID: 42, Number: "A-1001", Total: decimal.RequireFromString("42.5"), Status: "shipped", TrackingNumber: "1Z999"},
	}}}
	stdout := &bytes.Buffer{}
	cmd := NewOrdersCommand(stdout, &bytes.Buffer{}, defaultConfigLoader, fixedFactory(fake))

	if err := cmd.Run(nil); err != nil {
		t.Fatalf("expected orders to succeed, got err=%v", err)
	}
	out := stdout.String()
	for _, want := range []string{"A-1001", "$42.50", "1Z999", "shipped"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %q", want, out)
		}
	}
}

func TestWatchOnceRequiresCustomerAccount(t *testing.T) {
	fake := &fakeCommandClient{
		FakeBackend: &testutil.FakeBackend{},
		cred:        types.Credential{Token: "t", Role: types.RoleAdmin},
	}
	cmd := NewWatchCommand(&bytes.Buffer{}, &bytes.Buffer{}, defaultConfigLoader, fixedFactory(fake), nil)

	if err := cmd.Run([]string{"--once"}); !errors.Is(err, errSignedOut) {
		t.Fatalf("expected signed out error, got %v", err)
	}
	if fake.FetchCalls != 0 {
		t.Fatalf("expected no fetch for admin, got %d", fake.FetchCalls)
	}
}

func TestWatchOncePrintsConversation(t *testing.T) {
	fake := &fakeCommandClient{FakeBackend: &testutil.FakeBackend{Messages: []types.Message{
		{ID: 1, Text: "my parcel is late", Sender: types.SenderCustomer, Status: types.MessageStatusPending},
		{ID: 2, Text: "Let me check that for you", Sender: types.SenderAdmin, Status: types.MessageStatusReplied},
	}}}
	stdout := &bytes.Buffer{}
	cmd := NewWatchCommand(stdout, &bytes.Buffer{}, defaultConfigLoader, fixedFactory(fake), nil)

	if err := cmd.Run([]string{"--once"}); err != nil {
		t.Fatalf("expected watch to succeed, got err=%v", err)
	}
	out := stdout.String()
	for _, want := range []string{"-- agent connected", "you: my parcel is late", "support: Let me check that for you"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %q", want, out)
		}
	}
}

func TestWatchOnceArchivesEndedConversation(t *testing.T) {
	openStore := tempStoreFactory(t)
	fake := &fakeCommandClient{FakeBackend: &testutil.FakeBackend{Messages: []types.Message{
		{ID: 1, Text: "thanks", Sender: types.SenderCustomer, Status: types.MessageStatusPending},
		{ID: 2, Text: "Goodbye and take care!", Sender: types.SenderAdmin, Status: types.MessageStatusReplied},
	}}}
	stdout := &bytes.Buffer{}
	cmd := NewWatchCommand(stdout, &bytes.Buffer{}, defaultConfigLoader, fixedFactory(fake), openStore)

	if err := cmd.Run([]string{"--once", "--json"}); err != nil {
		t.Fatalf("expected watch to succeed, got err=%v", err)
	}
	var ended *watchEvent
	messages := 0
	decoder := json.NewDecoder(stdout)
	for decoder.More() {
		var event watchEvent
		if err := decoder.Decode(&event); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		switch event.Type {
		case "message":
			messages++
		case "session_ended":
			ended = &event
		}
	}
	if messages != 2 {
		t.Fatalf("expected both archived messages to print, got %d", messages)
	}
	if ended == nil || ended.TranscriptID == "" {
		t.Fatalf("expected session_ended event with transcript id")
	}

	repo, err := openStore(true)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer repo.Close()
	transcript, ok, err := repo.Transcripts().Get(context.Background(), ended.TranscriptID)
	if err != nil || !ok {
		t.Fatalf("expected transcript to be saved, ok=%v err=%v", ok, err)
	}
	if len(transcript.Entries) != 2 {
		t.Fatalf("expected two archived entries, got %d", len(transcript.Entries))
	}
}

func TestWatchStopsWhenConversationEnds(t *testing.T) {
	fake := &fakeCommandClient{FakeBackend: &testutil.FakeBackend{Messages: []types.Message{
		{ID: 1, Text: "thanks", Sender: types.SenderCustomer, Status: types.MessageStatusPending},
		{ID: 2, Text: "Goodbye and take care!", Sender: types.SenderAdmin, Status: types.MessageStatusReplied},
	}}}
	stdout := &bytes.Buffer{}
	cmd := NewWatchCommand(stdout, &bytes.Buffer{}, defaultConfigLoader, fixedFactory(fake), nil)
	ticks := make(chan time.Time, 1)
	ticks <- time.Now()
	cmd.ticker = func(time.Duration) (<-chan time.Time, func()) {
		return ticks, func() {}
	}
	cmd.notify = func() (context.Context, context.CancelFunc) {
		return context.WithCancel(context.Background())
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Run(nil) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected watch to stop cleanly, got err=%v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("watch kept running after the conversation ended")
	}
	if !strings.Contains(stdout.String(), "conversation ended") {
		t.Fatalf("expected end notice, got %q", stdout.String())
	}
}

func TestTranscriptsCommandListShowDelete(t *testing.T) {
	openStore := tempStoreFactory(t)
	repo, err := openStore(false)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	saved := types.Transcript{
		ID:      "01JTRANSCRIPT",
		EndedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Reason:  types.TranscriptReasonAgentGoodbye,
		Entries: []types.Entry{
			types.Persisted(types.Message{ID: 1, Text: "is my order shipped?", Sender: types.SenderCustomer}),
			types.Persisted(types.Message{ID: 2, Text: "Yes, have a good day", Sender: types.SenderAdmin}),
		},
	}
	if err := repo.Transcripts().Save(context.Background(), saved); err != nil {
		t.Fatalf("save transcript: %v", err)
	}
	_ = repo.Close()

	stdout := &bytes.Buffer{}
	cmd := NewTranscriptsCommand(stdout, &bytes.Buffer{}, openStore)
	if err := cmd.Run([]string{"list"}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(stdout.String(), "01JTRANSCRIPT") || !strings.Contains(stdout.String(), "is my order shipped?") {
		t.Fatalf("unexpected list output %q", stdout.String())
	}

	stdout.Reset()
	if err := cmd.Run([]string{"show", "01JTRANSCRIPT"}); err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(stdout.String(), "support: Yes, have a good day") {
		t.Fatalf("unexpected show output %q", stdout.String())
	}

	stdout.Reset()
	if err := cmd.Run([]string{"delete", "01JTRANSCRIPT"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := cmd.Run([]string{"show", "01JTRANSCRIPT"}); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestTranscriptsListWithoutStoreIsEmpty(t *testing.T) {
	dir := t.TempDir()
	openStore := func(readOnly bool) (store.Repository, error) {
		return store.OpenReadOnly(filepath.Join(dir, "missing.db"))
	}
	stdout := &bytes.Buffer{}
	if err := NewTranscriptsCommand(stdout, &bytes.Buffer{}, openStore).Run(nil); err != nil {
		t.Fatalf("expected empty listing, got err=%v", err)
	}
	if !strings.HasPrefix(stdout.String(), "ID") {
		t.Fatalf("expected header only, got %q", stdout.String())
	}
}

func TestLoginSavesCredential(t *testing.T) {
	tokens := &fakeTokenStore{}
	stdout := &bytes.Buffer{}
	cmd := NewLoginCommand(stdout, &bytes.Buffer{}, func() (tokenStore, error) { return tokens, nil })

	if err := cmd.Run([]string{"--token", " abc ", "--email", "me@example.com"}); err != nil {
		t.Fatalf("expected login to succeed, got err=%v", err)
	}
	if tokens.saved.Token != "abc" || tokens.saved.Role != types.RoleCustomer || tokens.saved.Email != "me@example.com" {
		t.Fatalf("unexpected saved credential: %+v", tokens.saved)
	}
	if strings.TrimSpace(stdout.String()) != "logged in" {
		t.Fatalf("unexpected output %q", stdout.String())
	}
}

func TestLoginReadsTokenFromStdin(t *testing.T) {
	tokens := &fakeTokenStore{}
	cmd := NewLoginCommand(&bytes.Buffer{}, &bytes.Buffer{}, func() (tokenStore, error) { return tokens, nil })
	cmd.stdin = strings.NewReader("from-stdin\n")

	if err := cmd.Run([]string{"--token", "-", "--role", "admin"}); err != nil {
		t.Fatalf("expected login to succeed, got err=%v", err)
	}
	if tokens.saved.Token != "from-stdin" || tokens.saved.Role != types.RoleAdmin {
		t.Fatalf("unexpected saved credential: %+v", tokens.saved)
	}
}

func TestLoginValidatesInput(t *testing.T) {
	cmd := NewLoginCommand(&bytes.Buffer{}, &bytes.Buffer{}, func() (tokenStore, error) { return &fakeTokenStore{}, nil })
	if err := cmd.Run(nil); err == nil || !strings.Contains(err.Error(), "--token") {
		t.Fatalf("expected token validation error, got %v", err)
	}
	if err := cmd.Run([]string{"--token", "x", "--role", "owner"}); err == nil || !strings.Contains(err.Error(), "unknown role") {
		t.Fatalf("expected role validation error, got %v", err)
	}
}

func TestLogoutClearsCredential(t *testing.T) {
	tokens := &fakeTokenStore{}
	cmd := NewLogoutCommand(&bytes.Buffer{}, &bytes.Buffer{}, func() (tokenStore, error) { return tokens, nil })
	if err := cmd.Run(nil); err != nil {
		t.Fatalf("expected logout to succeed, got err=%v", err)
	}
	if tokens.clears != 1 {
		t.Fatalf("expected one clear, got %d", tokens.clears)
	}
}

func TestConfigCommandPrintsDefaultsAsJSON(t *testing.T) {
	stdout := &bytes.Buffer{}
	loader := func() (config.Config, error) {
		return config.Config{}, errors.New("loader should not be called")
	}
	cmd := NewConfigCommand(stdout, &bytes.Buffer{}, loader)

	if err := cmd.Run([]string{"--default", "--format", "json"}); err != nil {
		t.Fatalf("expected config to succeed, got err=%v", err)
	}
	var out configOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("expected valid json, got err=%v raw=%q", err, stdout.String())
	}
	if out.API.BaseURL == "" || out.Chat.GoodbyeMode != config.GoodbyeModeSubstring || len(out.Chat.GoodbyeKeywords) == 0 {
		t.Fatalf("unexpected config output: %+v", out)
	}
	if out.ConfigPath != "" {
		t.Fatalf("expected no config path for defaults, got %q", out.ConfigPath)
	}
}

func TestConfigCommandRejectsUnknownFormat(t *testing.T) {
	cmd := NewConfigCommand(&bytes.Buffer{}, &bytes.Buffer{}, defaultConfigLoader)
	if err := cmd.Run([]string{"--format", "yaml"}); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestChatCommandRunsUIWithWidget(t *testing.T) {
	fake := &fakeCommandClient{FakeBackend: &testutil.FakeBackend{}}
	var got app.Options
	runs := 0
	cmd := NewChatCommand(&bytes.Buffer{}, defaultConfigLoader, fixedFactory(fake), tempStoreFactory(t), func(opts app.Options) error {
		runs++
		got = opts
		return nil
	})
	cmd.openLog = nil

	if err := cmd.Run([]string{"--no-markdown"}); err != nil {
		t.Fatalf("expected chat to succeed, got err=%v", err)
	}
	if runs != 1 {
		t.Fatalf("expected ui runner once, got %d", runs)
	}
	if got.Widget == nil || !got.Widget.Available() {
		t.Fatalf("expected an available widget")
	}
	if got.Markdown {
		t.Fatalf("expected markdown to be disabled")
	}
	if got.AppState == nil || got.Backend == nil {
		t.Fatalf("expected app state store and backend to be wired")
	}
	if got.Timeout != config.DefaultConfig().APITimeout() {
		t.Fatalf("unexpected timeout %v", got.Timeout)
	}
}

func TestChatCommandReportsLockedStore(t *testing.T) {
	fake := &fakeCommandClient{FakeBackend: &testutil.FakeBackend{}}
	locked := func(bool) (store.Repository, error) { return nil, store.ErrLocked }
	cmd := NewChatCommand(&bytes.Buffer{}, defaultConfigLoader, fixedFactory(fake), locked, func(app.Options) error {
		t.Fatalf("ui should not run")
		return nil
	})
	cmd.openLog = nil

	err := cmd.Run(nil)
	if err == nil || !strings.Contains(err.Error(), "already running") {
		t.Fatalf("expected locked error, got %v", err)
	}
}

func TestTableTextFlattensAndTruncates(t *testing.T) {
	got := tableText("line one\nline   two")
	if got != "line one line two" {
		t.Fatalf("unexpected flattened text %q", got)
	}
	long := strings.Repeat("x", tableTextWidth+10)
	if got := tableText(long); len(got) != tableTextWidth || !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncation to %d columns, got %q", tableTextWidth, got)
	}
}

type fakeCommandClient struct {
	*testutil.FakeBackend
	cred    types.Credential
	credErr error
}

func (f *fakeCommandClient) Credential() (types.Credential, error) {
	if f.credErr != nil {
		return types.Credential{}, f.credErr
	}
	if f.cred.Token == "" {
		return types.Credential{Token: "customer-token", Role: types.RoleCustomer}, nil
	}
	return f.cred, nil
}

func fixedFactory(client commandClient) clientFactory {
	return func(config.Config, logging.Logger) (commandClient, error) {
		return client, nil
	}
}

func defaultConfigLoader() (config.Config, error) {
	return config.DefaultConfig(), nil
}

func tempStoreFactory(t *testing.T) storeFactory {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storechat.db")
	return func(readOnly bool) (store.Repository, error) {
		if readOnly {
			return store.OpenReadOnly(path)
		}
		return store.NewBboltRepository(path)
	}
}

type fakeTokenStore struct {
	saved  types.Credential
	clears int
}

func (f *fakeTokenStore) Credential() (types.Credential, error) {
	return f.saved, nil
}

func (f *fakeTokenStore) Save(cred types.Credential) error {
	f.saved = cred
	return nil
}

func (f *fakeTokenStore) Clear() error {
	f.clears++
	return nil
}
