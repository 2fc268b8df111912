package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"imagestudio/internal/domain"
	"imagestudio/internal/studio"
	"imagestudio/internal/view"
)

// formRequest carries optional form edits; absent fields are left untouched.
type formRequest struct {
	Prompt      *string `json:"prompt"`
	AspectRatio *string `json:"aspect_ratio"`
}

type stateResponse struct {
	Snapshot domain.Snapshot `json:"snapshot"`
	View     view.View       `json:"view"`
}

func (a *App) stateResponse(r *http.Request, snap domain.Snapshot) stateResponse {
	return stateResponse{Snapshot: snap, View: view.Derive(snap, a.copyFor(r))}
}

// applyForm writes the edits in req to o. Only the ratio can be rejected.
func applyForm(o *studio.Orchestrator, req formRequest) error {
	if req.AspectRatio != nil {
		ratio, err := domain.ParseAspectRatio(*req.AspectRatio)
		if err != nil {
			return err
		}
		if err := o.SetAspectRatio(ratio); err != nil {
			return err
		}
	}
	if req.Prompt != nil {
		o.SetPrompt(*req.Prompt)
	}
	return nil
}

// postedForm reads the url-encoded fields of the page form.
func postedForm(r *http.Request) (formRequest, error) {
	if err := r.ParseForm(); err != nil {
		return formRequest{}, err
	}
	var req formRequest
	if _, ok := r.PostForm["prompt"]; ok {
		v := r.PostForm.Get("prompt")
		req.Prompt = &v
	}
	if _, ok := r.PostForm["aspect_ratio"]; ok {
		v := r.PostForm.Get("aspect_ratio")
		req.AspectRatio = &v
	}
	return req, nil
}

func decodeForm(r *http.Request) (formRequest, error) {
	var req formRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return formRequest{}, err
	}
	return req, nil
}

// Index renders the page for the caller's session.
func (a *App) Index(w http.ResponseWriter, r *http.Request) {
	o, err := a.orchestrator(r)
	if err != nil {
		a.sessionError(w, r, err, false)
		return
	}
	a.renderPage(w, r, o.Snapshot())
}

// Generate handles the page form: it stores the posted fields, issues a
// request and sends the browser back to the page.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	o, req, ok := a.pageForm(w, r)
	if !ok {
		return
	}
	if err := applyForm(o, req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a.start(r, o)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// AspectRatio handles the ratio selector buttons. The prompt typed so far is
// posted along and kept.
func (a *App) AspectRatio(w http.ResponseWriter, r *http.Request) {
	o, req, ok := a.pageForm(w, r)
	if !ok {
		return
	}
	if req.AspectRatio == nil {
		http.Error(w, domain.ErrUnknownAspectRatio.Error(), http.StatusBadRequest)
		return
	}
	if err := applyForm(o, req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) pageForm(w http.ResponseWriter, r *http.Request) (*studio.Orchestrator, formRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	req, err := postedForm(r)
	if err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return nil, formRequest{}, false
	}
	o, err := a.orchestrator(r)
	if err != nil {
		a.sessionError(w, r, err, false)
		return nil, formRequest{}, false
	}
	return o, req, true
}

// APIState returns the snapshot and its derived view.
func (a *App) APIState(w http.ResponseWriter, r *http.Request) {
	o, err := a.orchestrator(r)
	if err != nil {
		a.sessionError(w, r, err, true)
		return
	}
	a.json(w, http.StatusOK, a.stateResponse(r, o.Snapshot()))
}

// APIForm updates the form fields without submitting.
func (a *App) APIForm(w http.ResponseWriter, r *http.Request) {
	o, ok := a.apiForm(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, a.stateResponse(r, o.Snapshot()))
}

// APIGenerate applies optional form edits and issues a request. It answers
// 202 while the request is loading and 200 once the state is already
// terminal, which is the case for validation errors.
func (a *App) APIGenerate(w http.ResponseWriter, r *http.Request) {
	o, ok := a.apiForm(w, r)
	if !ok {
		return
	}
	a.start(r, o)
	snap := o.Snapshot()
	code := http.StatusOK
	if snap.State.IsLoading() {
		code = http.StatusAccepted
	}
	a.json(w, code, a.stateResponse(r, snap))
}

func (a *App) apiForm(w http.ResponseWriter, r *http.Request) (*studio.Orchestrator, bool) {
	req, err := decodeForm(r)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return nil, false
	}
	o, err := a.orchestrator(r)
	if err != nil {
		a.sessionError(w, r, err, true)
		return nil, false
	}
	if err := applyForm(o, req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_aspect_ratio", err.Error())
		return nil, false
	}
	return o, true
}

// start issues a request detached from r so the call outlives the response.
// The settled state reaches clients through the snapshot.
func (a *App) start(r *http.Request, o *studio.Orchestrator) {
	_ = o.Start(a.ctx)
	a.log(r).Debug().Msg("generation started")
}
