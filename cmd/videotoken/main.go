// Command videotoken mints and inspects room tokens and API bearer tokens
// with the secrets from the environment. It is meant for local testing.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"companion-counselling-be/internal/config"
	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/pkg/serverutils"
	"companion-counselling-be/pkg/videotoken"

	"github.com/fatih/color"
)

func usage() {
	color.Cyan("usage:")
	fmt.Println("  videotoken issue  -room ROOM -uid UID [-role publisher|subscriber]")
	fmt.Println("  videotoken verify -token TOKEN")
	fmt.Println("  videotoken actor  -id ID -role user|consultant|admin [-ttl 24h]")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.Load()

	var err error
	switch os.Args[1] {
	case "issue":
		err = issue(cfg, os.Args[2:])
	case "verify":
		err = verify(cfg, os.Args[2:])
	case "actor":
		err = actor(cfg, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
}

func newIssuer(cfg *config.Config) (*videotoken.Issuer, error) {
	return videotoken.NewIssuer(cfg.Video.AppID, cfg.Video.AppSecret, cfg.Video.TokenTTL)
}

func issue(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("issue", flag.ExitOnError)
	room := fs.String("room", "", "room name")
	uid := fs.String("uid", "", "participant id, e.g. user-7")
	role := fs.String("role", string(videotoken.RolePublisher), "publisher or subscriber")
	_ = fs.Parse(args)

	parsed, err := videotoken.ParseRole(*role)
	if err != nil {
		return err
	}
	issuer, err := newIssuer(cfg)
	if err != nil {
		return err
	}

	token, expiresAt, err := issuer.Issue(*room, *uid, parsed)
	if err != nil {
		return err
	}

	color.Green("Token issued (expires %s)", expiresAt.UTC().Format(time.RFC3339))
	fmt.Println(token)
	return nil
}

func verify(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	token := fs.String("token", "", "token to verify")
	_ = fs.Parse(args)

	issuer, err := newIssuer(cfg)
	if err != nil {
		return err
	}
	claims, err := issuer.Verify(*token)
	if err != nil {
		return err
	}

	color.Green("Token is valid")
	fmt.Printf("  app:     %s\n  room:    %s\n  uid:     %s\n  role:    %s\n  expires: %s\n",
		claims.AppID, claims.RoomName, claims.ParticipantID, claims.Role, claims.ExpireAt.UTC().Format(time.RFC3339))
	return nil
}

func actor(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("actor", flag.ExitOnError)
	id := fs.Uint("id", 0, "actor id")
	role := fs.String("role", string(entity.RoleUser), "user, consultant or admin")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	_ = fs.Parse(args)

	r := entity.Role(*role)
	if *id == 0 || !r.Valid() {
		return fmt.Errorf("need a positive -id and a valid -role")
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}

	token, err := serverutils.SignActorToken(cfg.Auth.JWTSecret, entity.Actor{ID: *id, Role: r}, *ttl)
	if err != nil {
		return err
	}

	color.Yellow("Bearer token for %s %d", r, *id)
	fmt.Println(token)
	return nil
}
