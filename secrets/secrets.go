package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/tnicklin/actuator_loglevels/models"
)

var _ Store = (*SecretsManagerStore)(nil)

// Store fetches management credentials from a secret store.
type Store interface {
	Credentials(ctx context.Context, id string) (models.Credentials, error)
}

// API is the subset of the Secrets Manager client used here.
type API interface {
	GetSecretValueWithContext(aws.Context, *secretsmanager.GetSecretValueInput, ...request.Option) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerStore reads a JSON {"username","password"} secret.
type SecretsManagerStore struct {
	api API
}

type Params struct {
	Session *session.Session
	// API overrides the client built from Session.
	API API
}

func NewSecretsManagerStore(p Params) *SecretsManagerStore {
	api := p.API
	if api == nil {
		api = secretsmanager.New(p.Session)
	}
	return &SecretsManagerStore{api: api}
}

func (s *SecretsManagerStore) Credentials(ctx context.Context, id string) (models.Credentials, error) {
	if id == "" {
		return models.Credentials{}, errors.New("secrets: secret id is empty")
	}

	out, err := s.api.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		return models.Credentials{}, fmt.Errorf("secrets: get %s: %w", id, err)
	}
	if out == nil || aws.StringValue(out.SecretString) == "" {
		return models.Credentials{}, fmt.Errorf("secrets: %s has no secret string", id)
	}

	return Decode([]byte(aws.StringValue(out.SecretString)))
}

// Decode parses a secret payload into Credentials. The error never includes
// the payload.
func Decode(data []byte) (models.Credentials, error) {
	var creds models.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return models.Credentials{}, fmt.Errorf("secrets: invalid json at offset %d", syntaxErr.Offset)
		}
		return models.Credentials{}, errors.New("secrets: secret is not a json object with string username and password")
	}
	if !creds.Valid() {
		return models.Credentials{}, errors.New("secrets: username and password are required")
	}
	return creds, nil
}

// Static returns the same credentials for every id.
type Static models.Credentials

func (s Static) Credentials(_ context.Context, _ string) (models.Credentials, error) {
	return models.Credentials(s), nil
}
