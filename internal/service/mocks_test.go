package service

import (
	"context"
	"encoding/json"
	"io"

	"lms-client/internal/model"

	"github.com/stretchr/testify/mock"
)

// MockGateway is a mock implementation of Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Get(ctx context.Context, path string, out any) error {
	args := m.Called(ctx, path, out)
	return args.Error(0)
}

func (m *MockGateway) Post(ctx context.Context, path string, in, out any) error {
	args := m.Called(ctx, path, in, out)
	return args.Error(0)
}

func (m *MockGateway) Put(ctx context.Context, path string, in, out any) error {
	args := m.Called(ctx, path, in, out)
	return args.Error(0)
}

func (m *MockGateway) Patch(ctx context.Context, path string, in, out any) error {
	args := m.Called(ctx, path, in, out)
	return args.Error(0)
}

func (m *MockGateway) Delete(ctx context.Context, path string, out any) error {
	args := m.Called(ctx, path, out)
	return args.Error(0)
}

func (m *MockGateway) Download(ctx context.Context, path string) (io.ReadCloser, string, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.String(1), args.Error(2)
}

// fill copies v into the out argument at index idx, the way the real client
// decodes a response body.
func fill(idx int, v any) func(mock.Arguments) {
	return func(args mock.Arguments) {
		raw, err := json.Marshal(v)
		if err != nil {
			panic(err)
		}
		if err := json.Unmarshal(raw, args.Get(idx)); err != nil {
			panic(err)
		}
	}
}

// fakeSession is an in-memory Session.
type fakeSession struct {
	user        *model.User
	started     *model.LoginResponse
	invalidated bool
}

func loggedIn(id string) *fakeSession {
	return &fakeSession{user: &model.User{ID: id, Name: "Asha", Role: model.RoleStudent}}
}

func (f *fakeSession) Start(ctx context.Context, login *model.LoginResponse) error {
	f.started = login
	f.user = &login.User
	return nil
}

func (f *fakeSession) Invalidate(ctx context.Context) error {
	f.invalidated = true
	f.user = nil
	return nil
}

func (f *fakeSession) UpdateUser(ctx context.Context, user model.User) error {
	if f.user == nil {
		return model.ErrNotLoggedIn
	}
	f.user = &user
	return nil
}

func (f *fakeSession) RequireUser() (model.User, error) {
	if f.user == nil {
		return model.User{}, model.ErrNotLoggedIn
	}
	return *f.user, nil
}

func sampleCourse() *model.Course {
	return &model.Course{
		ID:    "c1",
		Title: "Go Basics",
		Price: 1000,
		Modules: []model.Module{
			{ID: "m1", Subcourses: []model.Lesson{{ID: "l1"}, {ID: "l2"}}},
			{ID: "m2", Subcourses: []model.Lesson{{ID: "l3"}}},
		},
	}
}
