package cli

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/dmitrijs2005/feedsync/internal/client/api"
	"github.com/dmitrijs2005/feedsync/internal/common"
)

func (a *App) Login(ctx context.Context) error {

	userName, err := GetSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	defer common.WipeByteArray(password)

	if err := a.client.Login(ctx, userName, password); err != nil {
		switch {
		case errors.Is(err, api.ErrUnavailable):
			log.Printf("Server unavailable, try again later")
		case errors.Is(err, common.ErrorUnauthorized):
			log.Printf("Invalid username or password")
		default:
			log.Printf("Login unsuccessfull: %s", err.Error())
		}
		return err
	}

	log.Printf("Login successfull")

	// Load the first page right away so the user lands on a fresh feed.
	return a.Feed(ctx)
}
