package auth

import (
	"fmt"
	"time"

	"github.com/maingk/setback-game/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// SeatClaims bind a bearer to one seat of one room.
type SeatClaims struct {
	PlayerID string `json:"player_id"`
	RoomID   string `json:"room_id"`
	Seat     int    `json:"seat"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}

// GenerateSeatToken signs a token for the player sitting at seat in roomID.
func GenerateSeatToken(playerID, roomID string, seat int, name string, cfg config.Config) (string, error) {
	if cfg.JWTSecret == "" {
		return "", fmt.Errorf("JWT_SECRET is required")
	}
	now := time.Now().UTC()
	claims := SeatClaims{
		PlayerID: playerID,
		RoomID:   roomID,
		Seat:     seat,
		Name:     name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.JWTIssuer,
			Subject:   playerID,
			Audience:  jwt.ClaimStrings{roomID},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.JWTTTL)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(cfg.JWTSecret))
}

func ParseSeatToken(tokenString string, cfg config.Config) (*SeatClaims, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	tok, err := jwt.ParseWithClaims(tokenString, &SeatClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.JWTSecret), nil
	},
		jwt.WithIssuer(cfg.JWTIssuer),
		jwt.WithLeeway(30*time.Second),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := tok.Claims.(*SeatClaims)
	if !ok || !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.PlayerID == "" || claims.RoomID == "" {
		return nil, fmt.Errorf("token has no seat")
	}
	return claims, nil
}
