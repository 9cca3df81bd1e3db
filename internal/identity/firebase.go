package identity

import (
	"context"
	"errors"
	"fmt"

	"company-invites/internal/domain"
	"company-invites/internal/logger"
	"company-invites/internal/repository"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

const companyClaim = "company_id"

var errEmptyResponse = errors.New("identity provider returned an empty response")

// authClient is the part of *auth.Client used here
type authClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	SetCustomUserClaims(ctx context.Context, uid string, customClaims map[string]interface{}) error
}

// FirebaseProvider keeps accounts in Firebase Authentication and mirrors
// each new account into the users table.
type FirebaseProvider struct {
	client authClient
	users  repository.UserRepository
}

// NewFirebaseAuthClient initialises the Firebase app. An empty
// credentialsFile falls back to application default credentials.
func NewFirebaseAuthClient(ctx context.Context, projectID, credentialsFile string) (*auth.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firebase auth client: %w", err)
	}
	return client, nil
}

func NewFirebaseProvider(client authClient, users repository.UserRepository) *FirebaseProvider {
	return &FirebaseProvider{client: client, users: users}
}

func (p *FirebaseProvider) ResolveCaller(ctx context.Context, token string) (*domain.Caller, error) {
	logger.ExternalServiceCall("firebase", "VerifyIDToken")
	tok, err := p.client.VerifyIDToken(ctx, token)
	logger.ExternalServiceResult("firebase", "VerifyIDToken", err)
	if err != nil {
		return nil, fmt.Errorf("failed to verify id token: %w", err)
	}
	if tok == nil || tok.UID == "" {
		return nil, errEmptyResponse
	}

	caller := &domain.Caller{ID: tok.UID}
	if email, ok := tok.Claims["email"].(string); ok {
		caller.Email = email
	}
	return caller, nil
}

// CreateAccount creates a pre-verified Firebase user. Company claim and
// profile row failures are logged only; the account itself exists.
func (p *FirebaseProvider) CreateAccount(ctx context.Context, req domain.AccountRequest) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(req.Email).
		Password(req.Password).
		EmailVerified(true)

	logger.ExternalServiceCall("firebase", "CreateUser", "email", req.Email)
	rec, err := p.client.CreateUser(ctx, params)
	logger.ExternalServiceResult("firebase", "CreateUser", err, "email", req.Email)
	if err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	if rec == nil || rec.UserInfo == nil || rec.UID == "" {
		return "", errEmptyResponse
	}

	if req.CompanyID != "" {
		if err := p.client.SetCustomUserClaims(ctx, rec.UID, map[string]interface{}{companyClaim: req.CompanyID}); err != nil {
			logger.Warn("Failed to set company claim", "uid", rec.UID, "error", err)
		}
	}

	if err := p.users.UpsertProfile(ctx, rec.UID, req.Email); err != nil {
		logger.Warn("Failed to upsert user profile", "uid", rec.UID, "error", err)
	}
	return rec.UID, nil
}
