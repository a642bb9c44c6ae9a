package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/isdelr/glossary-be/internal/auth"
	"github.com/isdelr/glossary-be/internal/models"
	"github.com/isdelr/glossary-be/internal/services"
)

type fakeAuthService struct {
	loginResult services.LoginResult
	loginErr    error
	registerID  int64
	registerErr error
	registered  []services.RegisterInput
}

func (f *fakeAuthService) Login(_ context.Context, _, _ string) (services.LoginResult, error) {
	return f.loginResult, f.loginErr
}

func (f *fakeAuthService) Register(_ context.Context, input services.RegisterInput) (int64, error) {
	f.registered = append(f.registered, input)
	return f.registerID, f.registerErr
}

type fakeContributorService struct {
	byID map[int64]models.Contributor
	err  error
}

func (f *fakeContributorService) GetByEmail(_ context.Context, _ string) (models.Contributor, error) {
	return models.Contributor{}, services.ErrNotFound
}

func (f *fakeContributorService) Create(_ context.Context, _ models.Contributor) (int64, error) {
	return 0, nil
}

func (f *fakeContributorService) GetContributorByID(_ context.Context, id int64) (models.Contributor, error) {
	if f.err != nil {
		return models.Contributor{}, f.err
	}
	c, ok := f.byID[id]
	if !ok {
		return models.Contributor{}, services.ErrNotFound
	}
	return c, nil
}

func (f *fakeContributorService) GetAllContributors(_ context.Context) ([]models.Contributor, error) {
	out := []models.Contributor{}
	for _, c := range f.byID {
		out = append(out, c)
	}
	return out, f.err
}

type fakeTermService struct {
	terms   map[int64]models.Term
	nextID  int64
	err     error
	created []models.Term
}

func newFakeTermService() *fakeTermService {
	return &fakeTermService{terms: make(map[int64]models.Term), nextID: 1}
}

func (f *fakeTermService) GetAllTerms(_ context.Context) ([]models.Term, error) {
	out := []models.Term{}
	for _, t := range f.terms {
		out = append(out, t)
	}
	return out, f.err
}

func (f *fakeTermService) GetTerm(_ context.Context, id int64) (models.Term, error) {
	t, ok := f.terms[id]
	if !ok {
		return models.Term{}, services.ErrNotFound
	}
	return t, nil
}

func (f *fakeTermService) CreateTerm(_ context.Context, term models.Term) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	term.ID = f.nextID
	f.nextID++
	f.terms[term.ID] = term
	f.created = append(f.created, term)
	return term.ID, nil
}

func (f *fakeTermService) UpdateTerm(_ context.Context, term models.Term) error {
	if _, ok := f.terms[term.ID]; !ok {
		return services.ErrNotFound
	}
	f.terms[term.ID] = term
	return nil
}

func (f *fakeTermService) DeleteTerm(_ context.Context, id int64) error {
	if _, ok := f.terms[id]; !ok {
		return services.ErrNotFound
	}
	delete(f.terms, id)
	return nil
}

type fakeResourceService struct {
	err    error
	actors []*int64
}

func (f *fakeResourceService) GetResourcesForTerm(_ context.Context, _ int64) ([]models.Resource, error) {
	return []models.Resource{}, f.err
}

func (f *fakeResourceService) CreateResource(_ context.Context, _ models.Resource, actor *int64) (int64, error) {
	f.actors = append(f.actors, actor)
	return 7, f.err
}

func (f *fakeResourceService) UpdateResource(_ context.Context, _ models.Resource, actor *int64) error {
	f.actors = append(f.actors, actor)
	return f.err
}

func (f *fakeResourceService) DeleteResource(_ context.Context, _ int64, actor *int64) error {
	f.actors = append(f.actors, actor)
	return f.err
}

type fakeEventService struct {
	limits []int
}

func (f *fakeEventService) CreateEvent(_ context.Context, _, _, _ string, _ *int64) error {
	return nil
}

func (f *fakeEventService) GetRecentEvents(_ context.Context, limit int) ([]models.Event, error) {
	f.limits = append(f.limits, limit)
	return []models.Event{}, nil
}

func (f *fakeEventService) PruneEvents(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func newJSONRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withIdentity(req *http.Request, identity auth.Identity) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), identity))
}
