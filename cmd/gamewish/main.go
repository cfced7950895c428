// Package main is the terminal front-end for the GameWish client. Its
// job is wiring: load configuration, build the logger, the identity
// provider, the API client and the services, then dispatch to the
// requested subcommand. All behavior lives in internal/.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/gamewish/gamewish/internal/api"
	"github.com/gamewish/gamewish/internal/auth"
	"github.com/gamewish/gamewish/internal/config"
	"github.com/gamewish/gamewish/internal/model"
	"github.com/gamewish/gamewish/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	app := &app{cfg: cfg, logger: logger}
	if err := app.run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		logger.Error("command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: gamewish <command> [args]

commands:
  login <email> <password>            sign in and print the session tokens
  games [query]                       list or search the catalog
  featured                            show the featured selection
  users <query>                       search users by name or email
  wishlists                           list your wishlists
  wishlist show <id>                  show one wishlist
  wishlist create <title> [desc]      create a wishlist
  wishlist add <id> <gameId> [notes]  add a game
  wishlist remove <id> <gameId>       remove a game
  wishlist share <id> <userId>        share with a user
  wishlist unshare <id> <shareId>     revoke a share

environment:
  GAMEWISH_API_URL        backend base URL
  GAMEWISH_AUTH_API_KEY   identity provider API key (login only)
  GAMEWISH_ID_TOKEN       bearer token for data commands
  GAMEWISH_EMAIL          credentials used when no token is set
  GAMEWISH_PASSWORD`)
}

type app struct {
	cfg    *config.Config
	logger *slog.Logger

	session *auth.Session // set when credentials were exchanged this run
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.login(ctx, args)
	case "games":
		return a.games(ctx, args)
	case "featured":
		return a.featured(ctx)
	case "users":
		return a.users(ctx, args)
	case "wishlists":
		return a.wishlists(ctx)
	case "wishlist":
		return a.wishlist(ctx, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) provider() (*auth.Provider, error) {
	return auth.NewProvider(auth.Config{
		BaseURL:  a.cfg.AuthBaseURL,
		TokenURL: a.cfg.AuthTokenURL,
		APIKey:   a.cfg.AuthAPIKey,
	})
}

// tokens picks the token source for data commands: an explicit token from
// the environment wins; otherwise credentials are exchanged for a live
// session, which also gives us the user id for mutations.
func (a *app) tokens(ctx context.Context) (auth.TokenSource, error) {
	if tok := os.Getenv("GAMEWISH_ID_TOKEN"); tok != "" {
		return auth.StaticTokenSource(tok), nil
	}

	email, password := os.Getenv("GAMEWISH_EMAIL"), os.Getenv("GAMEWISH_PASSWORD")
	if email == "" || password == "" {
		return nil, fmt.Errorf("set GAMEWISH_ID_TOKEN, or GAMEWISH_EMAIL and GAMEWISH_PASSWORD")
	}

	p, err := a.provider()
	if err != nil {
		return nil, err
	}
	s, err := p.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	a.session = s
	return s, nil
}

func (a *app) client(ctx context.Context) (*api.Client, error) {
	tokens, err := a.tokens(ctx)
	if err != nil {
		return nil, err
	}
	return api.New(api.Config{
		BaseURL: a.cfg.APIBaseURL,
		Tokens:  tokens,
		Timeout: a.cfg.RequestTimeout,
	}, a.logger)
}

// userID is needed for mutations that carry the caller's id. Sessions
// know it; with a static token the caller must provide GAMEWISH_USER_ID.
func (a *app) userID() (string, error) {
	if a.session != nil {
		return a.session.UID(), nil
	}
	if id := os.Getenv("GAMEWISH_USER_ID"); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("set GAMEWISH_USER_ID when using a static token")
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: gamewish login <email> <password>")
	}
	p, err := a.provider()
	if err != nil {
		return err
	}
	s, err := p.SignIn(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	tok, err := s.IDToken(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s (%s)\n", s.DisplayName(), s.Email())
	fmt.Printf("export GAMEWISH_ID_TOKEN=%s\n", tok)
	fmt.Printf("export GAMEWISH_USER_ID=%s\n", s.UID())
	return nil
}

func (a *app) games(ctx context.Context, args []string) error {
	client, err := a.client(ctx)
	if err != nil {
		return err
	}
	svc := service.NewCatalogService(client, a.logger)

	query := strings.Join(args, " ")
	games, err := svc.Search(ctx, query)
	if err != nil {
		return err
	}
	printGames(games)
	return nil
}

func (a *app) featured(ctx context.Context) error {
	client, err := a.client(ctx)
	if err != nil {
		return err
	}
	games, err := client.FeaturedGames(ctx)
	if err != nil {
		return err
	}
	printGames(games)
	return nil
}

func (a *app) users(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: gamewish users <query>")
	}
	client, err := a.client(ctx)
	if err != nil {
		return err
	}
	svc := service.NewUserService(client, a.logger)

	users, err := svc.Search(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\n", u.ID, u.DisplayName, u.Email)
	}
	return w.Flush()
}

func (a *app) wishlists(ctx context.Context) error {
	client, err := a.client(ctx)
	if err != nil {
		return err
	}
	svc := service.NewWishlistService(client, a.logger)

	lists, err := svc.List(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tOWNER\tGAMES\tSHARED")
	for _, l := range lists {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", l.ID, l.Title, l.Owner.DisplayName, len(l.Entries), len(l.SharedWith))
	}
	return w.Flush()
}

func (a *app) wishlist(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: gamewish wishlist <show|create|add|remove|share|unshare> ...")
	}
	client, err := a.client(ctx)
	if err != nil {
		return err
	}
	svc := service.NewWishlistService(client, a.logger)

	sub, rest := args[0], args[1:]
	switch sub {
	case "show":
		if len(rest) != 1 {
			return fmt.Errorf("usage: gamewish wishlist show <id>")
		}
		w, err := svc.Get(ctx, rest[0])
		if err != nil {
			return err
		}
		printWishlist(w)
		return nil

	case "create":
		if len(rest) < 1 {
			return fmt.Errorf("usage: gamewish wishlist create <title> [description]")
		}
		desc := ""
		if len(rest) > 1 {
			desc = strings.Join(rest[1:], " ")
		}
		w, err := svc.Create(ctx, rest[0], desc)
		if err != nil {
			return err
		}
		fmt.Printf("created %q (%s)\n", w.Title, w.ID)
		return nil

	case "add":
		if len(rest) < 2 {
			return fmt.Errorf("usage: gamewish wishlist add <id> <gameId> [notes]")
		}
		notes := ""
		if len(rest) > 2 {
			notes = strings.Join(rest[2:], " ")
		}
		return svc.AddGame(ctx, rest[0], rest[1], notes)

	case "remove":
		if len(rest) != 2 {
			return fmt.Errorf("usage: gamewish wishlist remove <id> <gameId>")
		}
		uid, err := a.userID()
		if err != nil {
			return err
		}
		w, err := svc.Get(ctx, rest[0])
		if err != nil {
			return err
		}
		return svc.RemoveGame(ctx, w, rest[1], uid)

	case "share":
		if len(rest) != 2 {
			return fmt.Errorf("usage: gamewish wishlist share <id> <userId>")
		}
		share, err := svc.Share(ctx, rest[0], rest[1])
		if err != nil {
			return err
		}
		fmt.Printf("shared with %s (share %s)\n", share.User.DisplayName, share.ID)
		return nil

	case "unshare":
		if len(rest) != 2 {
			return fmt.Errorf("usage: gamewish wishlist unshare <id> <shareId>")
		}
		w, err := svc.Unshare(ctx, rest[0], rest[1])
		if err != nil {
			return err
		}
		fmt.Printf("%q now shared with %d user(s)\n", w.Title, len(w.SharedWith))
		return nil

	default:
		return fmt.Errorf("unknown wishlist subcommand %q", sub)
	}
}

func printGames(games []model.Game) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSCORE\tGENRE")
	for _, g := range games {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", g.ID, g.Name, g.Score, strings.Join(g.Genre, ", "))
	}
	_ = w.Flush()
}

func printWishlist(w *model.Wishlist) {
	fmt.Printf("%s — %s (owner: %s)\n", w.ID, w.Title, w.Owner.DisplayName)
	if w.Description != "" {
		fmt.Println(w.Description)
	}
	for _, e := range w.Entries {
		line := fmt.Sprintf("  %s  %s", e.GameID, e.Game.Name)
		if e.Notes != "" {
			line += "  (" + e.Notes + ")"
		}
		fmt.Println(line)
	}
	for _, s := range w.SharedWith {
		fmt.Printf("  shared with %s (share %s)\n", s.User.DisplayName, s.ID)
	}
}
