package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tnicklin/actuator_loglevels/actuator"
	"github.com/tnicklin/actuator_loglevels/clock"
	"github.com/tnicklin/actuator_loglevels/config"
	"github.com/tnicklin/actuator_loglevels/models"
	"github.com/tnicklin/actuator_loglevels/parameters"
	"github.com/tnicklin/actuator_loglevels/secrets"
	"github.com/tnicklin/actuator_loglevels/store"
	"github.com/tnicklin/actuator_loglevels/transition"
)

const (
	paramName = "/greeter/verbose-logs"
	secretID  = "/greeter/actuator/auth-creds"
	topicARN  = "arn:aws:sns:us-east-1:123456789012:greeter-error-topic"
)

var creds = models.Credentials{Username: "awslambda", Password: "pw"}

type recordingNotifier struct {
	mu      sync.Mutex
	records []models.TransitionRecord
}

func (n *recordingNotifier) Notify(_ context.Context, rec models.TransitionRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.records = append(n.records, rec)
	return nil
}

type actuatorServer struct {
	*httptest.Server
	mu    sync.Mutex
	paths []string
}

func newActuatorServer(t *testing.T, status int) *actuatorServer {
	t.Helper()
	s := &actuatorServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.paths = append(s.paths, r.URL.Path)
		s.mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(s.Close)
	return s
}

func snsEvent() events.SNSEvent {
	return events.SNSEvent{Records: []events.SNSEventRecord{{
		EventSource: "aws:sns",
		SNS: events.SNSEntity{
			MessageID: "msg-1",
			TopicArn:  topicARN,
			Message:   `{"AlarmName":"error-alarm","NewStateValue":"ALARM"}`,
		},
	}}}
}

func staticFactory(value map[string]string, sec secrets.Store, act actuator.Client, builds *int) Factory {
	return FactoryFunc(func(context.Context) (Collaborators, error) {
		*builds++
		return Collaborators{
			Parameters: parameters.Static(value),
			Secrets:    sec,
			Actuator:   act,
		}, nil
	})
}

func transitionConfig() config.TransitionConfig {
	return config.TransitionConfig{
		SecretID:      secretID,
		ParameterName: paramName,
	}
}

func TestHandleAppliesAndRecords(t *testing.T) {
	server := newActuatorServer(t, http.StatusNoContent)
	st := store.NewSQLiteStore(store.Params{Path: filepath.Join(t.TempDir(), "history.db")})
	notifier := &recordingNotifier{}
	builds := 0

	h, err := New(Params{
		Factory: staticFactory(
			map[string]string{paramName: "a.b.c:DEBUG,x.y:ERROR"},
			secrets.Static(creds),
			actuator.New(actuator.Params{BaseURL: server.URL, HTTPClient: server.Client()}),
			&builds,
		),
		Transition: transitionConfig(),
		Store:      st,
		Notifier:   notifier,
		Clock:      clock.Steps(time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC), time.Second),
	})
	require.NoError(t, err)

	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "req-1"})
	require.NoError(t, h.Handle(ctx, snsEvent()))

	assert.Equal(t, []string{"/actuator/loggers/a.b.c", "/actuator/loggers/x.y"}, server.paths)
	assert.Equal(t, 1, builds)

	require.NoError(t, st.Open(context.Background()))
	defer st.Close()
	rec, err := st.GetTransition(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, topicARN, rec.Trigger)
	assert.Equal(t, paramName, rec.Parameter)
	assert.Equal(t, time.Second, rec.FinishedAt.Sub(rec.StartedAt))
	require.Len(t, rec.Outcomes, 2)
	assert.Equal(t, http.StatusNoContent, rec.Outcomes[1].StatusCode)

	require.Len(t, notifier.records, 1)
	assert.Equal(t, "req-1", notifier.records[0].ID)
}

func TestHandleBuildsCollaboratorsPerInvocation(t *testing.T) {
	server := newActuatorServer(t, http.StatusOK)
	builds := 0

	h, err := New(Params{
		Factory: staticFactory(
			map[string]string{paramName: "a:INFO"},
			secrets.Static(creds),
			actuator.New(actuator.Params{BaseURL: server.URL, HTTPClient: server.Client()}),
			&builds,
		),
		Transition: transitionConfig(),
	})
	require.NoError(t, err)

	require.NoError(t, h.Handle(context.Background(), snsEvent()))
	require.NoError(t, h.Handle(context.Background(), snsEvent()))
	assert.Equal(t, 2, builds)
	assert.Len(t, server.paths, 2)
}

func TestHandleNoOpSkipsNotification(t *testing.T) {
	server := newActuatorServer(t, http.StatusOK)
	notifier := &recordingNotifier{}
	builds := 0

	h, err := New(Params{
		Factory: staticFactory(
			map[string]string{},
			secrets.Static(creds),
			actuator.New(actuator.Params{BaseURL: server.URL, HTTPClient: server.Client()}),
			&builds,
		),
		Transition: transitionConfig(),
		Notifier:   notifier,
		NewID:      func() string { return "generated" },
	})
	require.NoError(t, err)

	require.NoError(t, h.Handle(context.Background(), events.SNSEvent{}))
	assert.Empty(t, server.paths)
	assert.Empty(t, notifier.records)
}

type failingSecrets struct{}

func (failingSecrets) Credentials(context.Context, string) (models.Credentials, error) {
	return models.Credentials{}, errors.New("ResourceNotFoundException")
}

func TestHandleSecretFailure(t *testing.T) {
	server := newActuatorServer(t, http.StatusOK)
	notifier := &recordingNotifier{}
	st := store.NewSQLiteStore(store.Params{Path: filepath.Join(t.TempDir(), "history.db")})
	builds := 0

	h, err := New(Params{
		Factory: staticFactory(
			map[string]string{paramName: "a:DEBUG"},
			failingSecrets{},
			actuator.New(actuator.Params{BaseURL: server.URL, HTTPClient: server.Client()}),
			&builds,
		),
		Transition: transitionConfig(),
		Store:      st,
		Notifier:   notifier,
		NewID:      func() string { return "generated" },
	})
	require.NoError(t, err)

	err = h.Handle(context.Background(), snsEvent())
	require.Error(t, err)
	assert.True(t, errors.Is(err, transition.ErrConfiguration))
	assert.Empty(t, server.paths)

	require.Len(t, notifier.records, 1)
	assert.NotEmpty(t, notifier.records[0].Error)

	require.NoError(t, st.Open(context.Background()))
	defer st.Close()
	rec, err := st.GetTransition(context.Background(), "generated")
	require.NoError(t, err)
	assert.NotEmpty(t, rec.Error)
}

func TestHandleFactoryFailureIsConfigurationError(t *testing.T) {
	h, err := New(Params{
		Factory: FactoryFunc(func(context.Context) (Collaborators, error) {
			return Collaborators{}, errors.New("no region")
		}),
		Transition: transitionConfig(),
	})
	require.NoError(t, err)

	err = h.Handle(context.Background(), snsEvent())
	require.Error(t, err)
	assert.True(t, errors.Is(err, transition.ErrConfiguration))
}

func TestHandleTransportErrorPropagates(t *testing.T) {
	server := newActuatorServer(t, http.StatusOK)
	url := server.URL
	server.Close()
	builds := 0

	h, err := New(Params{
		Factory: staticFactory(
			map[string]string{paramName: "a:DEBUG,b:DEBUG"},
			secrets.Static(creds),
			actuator.New(actuator.Params{BaseURL: url}),
			&builds,
		),
		Transition: transitionConfig(),
	})
	require.NoError(t, err)

	err = h.Handle(context.Background(), snsEvent())
	var transportErr *transition.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "a", transportErr.Directive.Name)
}

func TestNewRequiresFactory(t *testing.T) {
	_, err := New(Params{})
	require.Error(t, err)
}

func TestTriggerOf(t *testing.T) {
	assert.Equal(t, topicARN, triggerOf(snsEvent()))
	assert.Equal(t, "", triggerOf(events.SNSEvent{}))
	assert.Equal(t, "sub", triggerOf(events.SNSEvent{Records: []events.SNSEventRecord{{EventSubscriptionArn: "sub"}}}))
}

func TestAWSFactoryBuildsFreshClients(t *testing.T) {
	f := AWSFactory{Transition: config.TransitionConfig{ServiceEndpoint: "http://localhost:8080"}}
	f.AWS.Region = "us-east-1"

	first, err := f.New(context.Background())
	require.NoError(t, err)
	second, err := f.New(context.Background())
	require.NoError(t, err)

	assert.NotNil(t, first.Parameters)
	assert.NotNil(t, first.Secrets)
	assert.NotSame(t, first.Actuator, second.Actuator)
}
