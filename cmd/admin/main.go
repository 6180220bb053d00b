// Package main provides moderation utilities for operators working outside the API.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"warden/internal/bootstrap"
	"warden/internal/config"
	"warden/internal/middleware"
	"warden/internal/models"
	"warden/internal/service"

	"github.com/golang-jwt/jwt/v5"
)

// operatorID is recorded as the issuer of penalties applied from the CLI.
const operatorID uint = 1

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  admin status <user_id>                  - Show suspension status")
	fmt.Println("  admin history <user_id>                 - List penalties")
	fmt.Println("  admin penalize <user_id> <type> <reason> - Issue warning|permanent|<n>d|<n>h")
	fmt.Println("  admin revoke <user_id>                  - Lift active suspensions")
	fmt.Println("  admin token <user_id> [admin]           - Mint a 24h API token for local testing")
}

func main() {
	if len(os.Args) < 3 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	userID, err := strconv.ParseUint(os.Args[2], 10, 32)
	if err != nil || userID == 0 {
		log.Fatalf("Invalid user ID %q", os.Args[2])
	}
	uid := uint(userID)

	if os.Args[1] == "token" {
		admin := len(os.Args) > 3 && os.Args[3] == "admin"
		token, err := mintToken(cfg.JWTSecret, uid, admin)
		if err != nil {
			log.Fatalf("Failed to sign token: %v", err)
		}
		fmt.Println(token)
		return
	}

	db, rdb, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	services, err := bootstrap.NewServices(cfg, db, rdb, bootstrap.Overrides{})
	if err != nil {
		log.Fatalf("Failed to build services: %v", err)
	}

	ctx := context.Background()
	switch os.Args[1] {
	case "status":
		showStatus(ctx, services.Sanctions, uid)
	case "history":
		showHistory(ctx, services.Sanctions, uid)
	case "penalize":
		if len(os.Args) < 5 {
			usage()
			os.Exit(1)
		}
		penalize(ctx, services.Sanctions, uid, os.Args[3], strings.Join(os.Args[4:], " "))
	case "revoke":
		revoked, err := services.Sanctions.Revoke(ctx, uid, operatorID)
		if err != nil {
			log.Fatalf("Failed to revoke: %v", err)
		}
		if !revoked {
			fmt.Printf("User %d has no active suspension\n", uid)
			return
		}
		fmt.Printf("Lifted active suspensions for user %d\n", uid)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func showStatus(ctx context.Context, sanctions *service.SanctionService, userID uint) {
	status, err := sanctions.CheckStatus(ctx, userID)
	if err != nil {
		log.Fatalf("Failed to check status: %v", err)
	}
	switch {
	case !status.IsSuspended:
		fmt.Printf("User %d is active\n", userID)
	case status.Permanent:
		fmt.Printf("User %d is permanently suspended\n", userID)
	default:
		fmt.Printf("User %d is suspended until %s\n", userID, status.SuspendedUntil.Format(time.RFC3339))
	}
}

func showHistory(ctx context.Context, sanctions *service.SanctionService, userID uint) {
	penalties, err := sanctions.History(ctx, userID)
	if err != nil {
		log.Fatalf("Failed to load penalties: %v", err)
	}
	if len(penalties) == 0 {
		fmt.Printf("User %d has no penalties\n", userID)
		return
	}
	fmt.Println("─────────────────────────────────────")
	for _, p := range penalties {
		expires := "never"
		if p.ExpiresAt != nil {
			expires = p.ExpiresAt.Format(time.RFC3339)
		}
		fmt.Printf("#%d | %s | issued %s | expires %s | %s\n",
			p.ID, p.Kind, p.CreatedAt.Format(time.RFC3339), expires, p.Reason)
	}
	fmt.Println("─────────────────────────────────────")
}

func penalize(ctx context.Context, sanctions *service.SanctionService, userID uint, rawType, reason string) {
	penaltyType, err := models.ParsePenaltyType(rawType)
	if err != nil {
		log.Fatalf("Invalid penalty type: %v", err)
	}
	penalty, err := sanctions.Issue(ctx, service.IssueInput{
		UserID:   userID,
		Reason:   reason,
		Type:     penaltyType,
		IssuedBy: operatorID,
	})
	if err != nil {
		log.Fatalf("Failed to issue penalty: %v", err)
	}
	fmt.Printf("Issued %s penalty #%d to user %d\n", penalty.Kind, penalty.ID, userID)
}

func mintToken(secret string, userID uint, admin bool) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	if admin {
		claims["role"] = middleware.RoleAdmin
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
