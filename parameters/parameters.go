package parameters

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ssm"
)

var _ Store = (*SSMStore)(nil)

// Store reads single values from a key-value parameter store.
type Store interface {
	// Get returns the parameter value. A parameter that does not exist is
	// reported as found == false with a nil error.
	Get(ctx context.Context, name string) (value string, found bool, err error)
}

// API is the subset of the SSM client used here.
type API interface {
	GetParameterWithContext(aws.Context, *ssm.GetParameterInput, ...request.Option) (*ssm.GetParameterOutput, error)
}

// SSMStore reads parameters from AWS Systems Manager Parameter Store.
type SSMStore struct {
	api API
}

type Params struct {
	Session *session.Session
	// API overrides the client built from Session.
	API API
}

func NewSSMStore(p Params) *SSMStore {
	api := p.API
	if api == nil {
		api = ssm.New(p.Session)
	}
	return &SSMStore{api: api}
}

func (s *SSMStore) Get(ctx context.Context, name string) (string, bool, error) {
	if name == "" {
		return "", false, errors.New("parameters: parameter name is empty")
	}

	out, err := s.api.GetParameterWithContext(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == ssm.ErrCodeParameterNotFound {
			return "", false, nil
		}
		return "", false, fmt.Errorf("parameters: get %s: %w", name, err)
	}

	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return "", false, nil
	}
	return aws.StringValue(out.Parameter.Value), true, nil
}

// Static is an in-memory Store, used by the CLI when directives are passed
// on the command line.
type Static map[string]string

func (s Static) Get(_ context.Context, name string) (string, bool, error) {
	v, ok := s[name]
	return v, ok, nil
}
