package repositories

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"

	"github.com/offerlookup/offer-backend/models"
)

const tokenIssuer = "offer-backend"

type JwtRepository struct {
	signingKey []byte
}

// We add jwt.RegisteredClaims as an embedded type, to provide fields like expiry time
type Claims struct {
	UserId string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

var ValidationAlgo = jwt.SigningMethodHS256

func NewJwtRepository(signingKey string) *JwtRepository {
	return &JwtRepository{signingKey: []byte(signingKey)}
}

func (repo *JwtRepository) EncodeToken(expirationTime time.Time, creds models.Credentials) (string, error) {
	claims := &Claims{
		UserId: string(creds.ActorIdentity.UserId),
		Email:  creds.ActorIdentity.Email,
		Role:   creds.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(ValidationAlgo, claims)
	return token.SignedString(repo.signingKey)
}

func (repo *JwtRepository) ValidateToken(token string) (models.Credentials, error) {
	keyFunc := func(token *jwt.Token) (any, error) {
		if token.Method != ValidationAlgo {
			return nil, errors.Wrapf(models.UnAuthorizedError,
				"unexpected signing method: %v", token.Header["alg"])
		}
		return repo.signingKey, nil
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, keyFunc,
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return models.Credentials{}, errors.Join(
			models.UnAuthorizedError,
			errors.Wrap(err, "error parsing jwt token claims"),
		)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserId == "" {
		return models.Credentials{}, errors.Wrap(models.UnAuthorizedError, "invalid jwt token")
	}

	return models.Credentials{
		ActorIdentity: models.Identity{
			UserId: models.UserId(claims.UserId),
			Email:  claims.Email,
		},
		Role: models.RoleFromString(claims.Role),
	}, nil
}
