package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shrimpsizemoose/teachteam/internal/models"
)

const (
	timeFormat  = "2006-01-02 15:04:05"
	authKeyTpl  = "auth:%s"   // auth:${lecturer}
	linkKeyTpl  = "tglink:%s" // tglink:${telegram username}
	tokenPrefix = "tt-"
)

type TokenManager struct {
	redis *redis.Client
}

func NewTokenManager(redis *redis.Client) *TokenManager {
	return &TokenManager{redis: redis}
}

func generateToken() (string, error) {
	randomBytes := make([]byte, 12)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return tokenPrefix + hex.EncodeToString(randomBytes), nil
}

// FetchOrCreateLecturerToken returns the lecturer's API token, creating it on
// first request. The bool reports whether the token is new.
func (tm *TokenManager) FetchOrCreateLecturerToken(ctx context.Context, lecturer string) (*models.TokenInfo, bool, error) {
	key := fmt.Sprintf(authKeyTpl, lecturer)

	_, err := tm.redis.HGet(ctx, key, "token").Result()
	if err != nil && err != redis.Nil {
		return nil, false, fmt.Errorf("failed to check token: %w", err)
	}

	now := time.Now().UTC()
	isNewToken := false

	pipe := tm.redis.Pipeline()
	if err == redis.Nil {
		token, err := generateToken()
		if err != nil {
			return nil, false, fmt.Errorf("failed to generate token: %w", err)
		}
		pipe.HSet(ctx, key, map[string]interface{}{
			"token":                 token,
			"request_count":         1,
			"last_request_dttm_utc": now.Format(timeFormat),
			"created_dttm_utc":      now.Format(timeFormat),
		})
		isNewToken = true
	} else {
		pipe.HIncrBy(ctx, key, "request_count", 1)
		pipe.HSet(ctx, key, "last_request_dttm_utc", now.Format(timeFormat))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to store token: %w", err)
	}

	values, err := tm.redis.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get token info: %w", err)
	}

	lastReqTime, _ := time.Parse(timeFormat, values["last_request_dttm_utc"])
	createdTime, _ := time.Parse(timeFormat, values["created_dttm_utc"])
	reqCount, _ := strconv.Atoi(values["request_count"])

	return &models.TokenInfo{
		Lecturer:        lecturer,
		Token:           values["token"],
		RequestCount:    reqCount,
		LastRequestTime: lastReqTime,
		CreatedTime:     createdTime,
	}, isNewToken, nil
}

func (tm *TokenManager) RevokeLecturerToken(ctx context.Context, lecturer string) error {
	return tm.redis.Del(ctx, fmt.Sprintf(authKeyTpl, lecturer)).Err()
}

func (tm *TokenManager) SaveTelegramLink(ctx context.Context, link *models.TelegramLink) error {
	key := fmt.Sprintf(linkKeyTpl, link.Username)
	return tm.redis.HSet(ctx, key, map[string]interface{}{
		"lecturer":        link.Lecturer,
		"linked_dttm_utc": link.LinkedAt.Format(timeFormat),
		"linked_by":       link.LinkedBy,
	}).Err()
}

func (tm *TokenManager) FetchTelegramLink(ctx context.Context, username string) (*models.TelegramLink, error) {
	key := fmt.Sprintf(linkKeyTpl, username)

	values, err := tm.redis.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch telegram link for %s: %w", username, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no lecturer linked to telegram user %s", username)
	}

	linkedAt, _ := time.Parse(timeFormat, values["linked_dttm_utc"])
	linkedBy, _ := strconv.ParseInt(values["linked_by"], 10, 64)

	return &models.TelegramLink{
		Username: username,
		Lecturer: values["lecturer"],
		LinkedAt: linkedAt,
		LinkedBy: linkedBy,
	}, nil
}

func (tm *TokenManager) Close() error {
	if tm.redis != nil {
		return tm.redis.Close()
	}
	return nil
}
