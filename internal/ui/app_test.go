package ui

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"kitbag/internal/api"
	"kitbag/internal/artifact"
	"kitbag/internal/notify"
	"kitbag/internal/prefs"
	"kitbag/internal/service"
	"kitbag/internal/session"
)

type stubToolbox struct {
	qr func(context.Context, api.QRRequest) (*api.Payload, error)
}

func (s *stubToolbox) Health(context.Context) error { return nil }

func (s *stubToolbox) DownloadVideo(context.Context, api.VideoRequest) (*api.Payload, error) {
	return nil, errors.New("not wired")
}

func (s *stubToolbox) GenerateQR(ctx context.Context, req api.QRRequest) (*api.Payload, error) {
	if s.qr != nil {
		return s.qr(ctx, req)
	}
	return &api.Payload{Data: []byte("png"), MIME: "image/png", Filename: "qrcode.png"}, nil
}

func (s *stubToolbox) Synthesize(context.Context, api.SpeechRequest) (*api.Payload, error) {
	return nil, errors.New("not wired")
}

func (s *stubToolbox) RemoveBackground(context.Context, api.CutoutRequest) (*api.Payload, error) {
	return nil, errors.New("not wired")
}

func newTestModel(t *testing.T, tb api.Toolbox) Model {
	t.Helper()

	store := session.NewStore(service.IDs())
	notices := notify.NewQueue()
	registry, err := artifact.NewRegistry(artifact.Options{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	t.Cleanup(registry.Close)

	orch := service.New(service.Options{
		Client:      tb,
		Session:     store,
		Notices:     notices,
		Artifacts:   registry,
		DownloadDir: filepath.Join(t.TempDir(), "downloads"),
	})

	m := New(Options{
		Context:      context.Background(),
		Orchestrator: orch,
		Session:      store,
		Notices:      notices,
		Logger:       zerolog.Nop(),
		PrefsPath:    filepath.Join(t.TempDir(), "prefs.toml"),
		Prefs:        prefs.Prefs{Theme: "Dracula", Quality: "best", Language: "en"},
	})
	m.width = 100
	m.height = 40
	m.ready = true
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model, cmd
}

func TestModel_NumberKeysOpenASingleModal(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, &stubToolbox{})

	m, _ = update(t, m, keyPress("2"))
	if got := m.store.ActiveModal(); got != string(service.QR) {
		t.Fatalf("active modal = %q, want qr", got)
	}

	// Opening another tool displaces the first.
	m, _ = update(t, m, keyPress("3"))
	if got := m.store.ActiveModal(); got != string(service.Speech) {
		t.Fatalf("active modal = %q, want tts", got)
	}
	if m.forms[service.QR] != nil {
		t.Fatal("displaced tool kept its form")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if got := m.store.ActiveModal(); got != "" {
		t.Fatalf("escape left %q open", got)
	}
}

func TestModel_SubmitRoundTripRendersResult(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, &stubToolbox{})

	m, _ = update(t, m, keyPress("2"))
	f := m.forms[service.QR]
	typeInto(f, "hello world")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("submit returned no command")
	}
	if m.orch.Phase(service.QR) != service.PhaseLoading {
		t.Fatalf("phase after submit = %v, want loading", m.orch.Phase(service.QR))
	}

	// Run the dispatch command and feed its result back, as the program
	// loop would.
	msg := findResult(t, cmd())
	m, _ = update(t, m, msg)

	if m.orch.Phase(service.QR) != service.PhaseRendered {
		t.Fatalf("phase after result = %v, want rendered", m.orch.Phase(service.QR))
	}
	res := m.store.Result(string(service.QR))
	if res == nil || res.Handle == nil || res.Handle.Filename() != "qrcode.png" {
		t.Fatalf("unexpected stored result: %+v", res)
	}

	if view := m.View(); view == "" {
		t.Fatal("rendered view is empty")
	}
}

func TestModel_InvalidInputNeverDispatches(t *testing.T) {
	t.Parallel()

	called := false
	m := newTestModel(t, &stubToolbox{qr: func(context.Context, api.QRRequest) (*api.Payload, error) {
		called = true
		return nil, errors.New("should not run")
	}})

	m, _ = update(t, m, keyPress("2"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter}) // blank text

	if cmd != nil {
		t.Fatal("blank form produced a dispatch command")
	}
	if called {
		t.Fatal("toolbox was called for invalid input")
	}
	if m.orch.Phase(service.QR) != service.PhaseIdle {
		t.Fatalf("phase = %v, want idle", m.orch.Phase(service.QR))
	}
	if m.notices.Len() == 0 {
		t.Fatal("validation failure posted no notice")
	}
}

func TestModel_LateResultLandsAfterClose(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, &stubToolbox{})

	m, _ = update(t, m, keyPress("2"))
	typeInto(m.forms[service.QR], "late")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("submit returned no command")
	}

	// Close the modal while the request is still in flight.
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.store.ActiveModal() != "" {
		t.Fatal("modal still open")
	}

	msg := findResult(t, cmd())
	m, _ = update(t, m, msg)

	if m.orch.Phase(service.QR) != service.PhaseRendered {
		t.Fatalf("phase = %v, want rendered even after close", m.orch.Phase(service.QR))
	}
}

func TestModel_HelpOverlayTogglesAndSwallowsKeys(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, &stubToolbox{})

	m, _ = update(t, m, keyPress("?"))
	if !m.showHelp {
		t.Fatal("help did not open")
	}

	m, _ = update(t, m, keyPress("2"))
	if m.showHelp {
		t.Fatal("help still open after key press")
	}
	if m.store.ActiveModal() != "" {
		t.Fatal("key that closed help also opened a modal")
	}
}

func TestModel_ThemeCyclePersists(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, &stubToolbox{})
	before := m.theme.Name

	m, _ = update(t, m, keyPress("T"))
	if m.theme.Name == before {
		t.Fatal("theme did not change")
	}

	saved := prefs.Load(m.prefsPath)
	if saved.Theme != m.theme.Name {
		t.Fatalf("saved theme = %q, want %q", saved.Theme, m.theme.Name)
	}
}

// findResult unwraps a dispatch command's message, recursing through batches.
func findResult(t *testing.T, msg tea.Msg) resultMsg {
	t.Helper()
	switch v := msg.(type) {
	case resultMsg:
		return v
	case tea.BatchMsg:
		for _, c := range v {
			if c == nil {
				continue
			}
			if inner, ok := c().(resultMsg); ok {
				return inner
			}
		}
	}
	t.Fatalf("no result message in %T", msg)
	return resultMsg{}
}
