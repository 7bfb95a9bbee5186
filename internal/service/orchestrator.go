package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"kitbag/internal/api"
	"kitbag/internal/artifact"
	"kitbag/internal/notify"
	"kitbag/internal/session"
)

// saveGrace is the short release window after an artifact has been saved to
// the downloads directory; the staged copy is no longer needed.
const saveGrace = 10 * time.Second

// Result is the outcome of one dispatched request, delivered back to the
// orchestrator by the UI loop once the round trip finishes.
type Result struct {
	Service  ID
	Payload  *api.Payload
	Original *api.Payload // background removal carries the upload too
	Err      error
}

// Orchestrator runs the validate -> dispatch -> render lifecycle for all
// four services. It owns no state of its own; everything lives in the
// session store and the artifact registry so a late result lands correctly
// even after its modal was closed.
type Orchestrator struct {
	client      api.Toolbox
	session     *session.Store
	notices     *notify.Queue
	artifacts   *artifact.Registry
	logger      zerolog.Logger
	downloadDir string
}

// Options configure an Orchestrator.
type Options struct {
	Client      api.Toolbox
	Session     *session.Store
	Notices     *notify.Queue
	Artifacts   *artifact.Registry
	Logger      *zerolog.Logger
	DownloadDir string
}

// New builds an Orchestrator.
func New(opts Options) *Orchestrator {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Orchestrator{
		client:      opts.Client,
		session:     opts.Session,
		notices:     opts.Notices,
		artifacts:   opts.Artifacts,
		logger:      logger,
		downloadDir: opts.DownloadDir,
	}
}

// Phase derives the current lifecycle phase for a service from stored state.
func (o *Orchestrator) Phase(id ID) Phase {
	if o.session.Processing(string(id)) {
		return PhaseLoading
	}
	res := o.session.Result(string(id))
	if res == nil {
		return PhaseIdle
	}
	if res.Outcome == session.OutcomeError {
		return PhaseErrorRendered
	}
	return PhaseRendered
}

// Submit validates input and, when it passes, marks the service as
// processing and returns the dispatch closure. The closure performs the
// round trip (including the client's internal retries) and is meant to run
// off the UI goroutine; its Result must be handed back to Finish.
//
// A validation failure or an already-in-flight service posts a notice and
// returns a nil closure; no network call happens and the form stays
// editable.
func (o *Orchestrator) Submit(ctx context.Context, id ID, in Input) func() Result {
	if verr := Validate(id, in); verr != nil {
		o.notices.Error(verr.Reason)
		o.logger.Debug().Str("service", string(id)).Str("reason", verr.Reason).Msg("input rejected")
		return nil
	}

	if !o.session.StartProcessing(string(id)) {
		o.notices.Warning(fmt.Sprintf("%s is still working", id.Title()))
		return nil
	}

	o.logger.Info().Str("service", string(id)).Msg("request dispatched")

	switch id {
	case Video:
		return func() Result {
			payload, err := o.client.DownloadVideo(ctx, api.VideoRequest{
				URL:     strings.TrimSpace(in.URL),
				Quality: in.Quality,
			})
			return Result{Service: id, Payload: payload, Err: err}
		}
	case QR:
		return func() Result {
			payload, err := o.client.GenerateQR(ctx, api.QRRequest{
				Text:            in.Text,
				Size:            in.Size,
				Border:          in.Border,
				ErrorCorrection: in.ErrorCorrection,
			})
			return Result{Service: id, Payload: payload, Err: err}
		}
	case Speech:
		return func() Result {
			payload, err := o.client.Synthesize(ctx, api.SpeechRequest{
				Text:       in.Text,
				Language:   in.Language,
				Slow:       in.Slow,
				VoiceStyle: in.VoiceStyle,
			})
			return Result{Service: id, Payload: payload, Err: err}
		}
	case Cutout:
		path := strings.TrimSpace(in.FilePath)
		return func() Result {
			data, err := os.ReadFile(path)
			if err != nil {
				return Result{Service: id, Err: fmt.Errorf("read %s: %w", filepath.Base(path), err)}
			}
			original := &api.Payload{
				Data:     data,
				MIME:     DetectImageMIME(path),
				Filename: filepath.Base(path),
			}
			payload, err := o.client.RemoveBackground(ctx, api.CutoutRequest{
				Filename: original.Filename,
				MIME:     original.MIME,
				Data:     data,
			})
			return Result{Service: id, Payload: payload, Original: original, Err: err}
		}
	default:
		o.session.StopProcessing(string(id))
		return nil
	}
}

// Finish applies a dispatch result: Loading moves to Rendered or
// ErrorRendered, artifacts are staged behind fresh handles, and the outcome
// is surfaced on the notification channel. Results land keyed by service id
// whether or not the modal is still open.
func (o *Orchestrator) Finish(res Result) {
	id := string(res.Service)
	o.session.StopProcessing(id)

	if res.Err != nil {
		message := api.ErrorMessage(res.Err)
		o.logger.Warn().Str("service", id).Err(res.Err).Msg("request failed")
		o.session.SetResult(id, session.Result{
			Outcome: session.OutcomeError,
			Message: message,
		})
		o.notices.Error(message)
		return
	}

	handle, err := o.artifacts.Stage(id, res.Payload.Filename, res.Payload.MIME, res.Payload.Data)
	if err != nil {
		o.logger.Error().Str("service", id).Err(err).Msg("staging failed")
		o.session.SetResult(id, session.Result{
			Outcome: session.OutcomeError,
			Message: "could not stage the result locally",
		})
		o.notices.Error("could not stage the result locally")
		return
	}

	var original *artifact.Handle
	if res.Original != nil {
		original, err = o.artifacts.Stage(id, res.Original.Filename, res.Original.MIME, res.Original.Data)
		if err != nil {
			handle.Release()
			o.logger.Error().Str("service", id).Err(err).Msg("staging original failed")
			o.session.SetResult(id, session.Result{
				Outcome: session.OutcomeError,
				Message: "could not stage the result locally",
			})
			o.notices.Error("could not stage the result locally")
			return
		}
	}

	o.session.SetResult(id, session.Result{
		Outcome:  session.OutcomeSuccess,
		Handle:   handle,
		Original: original,
	})
	o.notices.Success(fmt.Sprintf("%s ready: %s", res.Service.Title(), handle.Filename()))
	o.logger.Info().Str("service", id).Str("file", handle.Filename()).Int64("bytes", handle.Size()).Msg("result rendered")
}

// Save copies a rendered artifact into the downloads directory and schedules
// the short post-save release of its staged copy. It returns the written
// path.
func (o *Orchestrator) Save(id ID) (string, error) {
	res := o.session.Result(string(id))
	if res == nil || res.Handle == nil {
		return "", fmt.Errorf("no result to save for %s", id)
	}

	data, err := res.Handle.Read()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(o.downloadDir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	target := filepath.Join(o.downloadDir, res.Handle.Filename())
	if _, err := os.Stat(target); err == nil {
		target = timestampedPath(target, time.Now())
	}

	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write download: %w", err)
	}

	res.Handle.ReleaseAfter(saveGrace)
	o.notices.Success(fmt.Sprintf("saved %s", target))
	o.logger.Info().Str("service", string(id)).Str("path", target).Msg("artifact saved")
	return target, nil
}

// Reset returns a service to Idle, releasing its staged result. The "do
// again" action.
func (o *Orchestrator) Reset(id ID) {
	o.session.ClearResult(string(id))
}

// timestampedPath derives a collision-free sibling of path.
func timestampedPath(path string, t time.Time) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s-%s%s", base, t.Format("20060102-150405"), ext)
}
