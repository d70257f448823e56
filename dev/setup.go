package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	devenv "untis-scraper/dev/env"
	"untis-scraper/lib/recordstore"
)

const (
	recordsDB    = "<dev_state>/records.db"
	portalConfig = "<dev_state>/webuntis_config.json5"
)

// the same database `untis-cli scrape --db <dev_state>/records.db` writes to
func CreateRecordsDB(ctx context.Context) error {
	path, err := devenv.ResolvePath(recordsDB)
	if err != nil {
		return err
	}
	_, err = os.Stat(path)
	if err == nil {
		fmt.Println("database already created at", path)
		return nil
	}

	fmt.Println("creating database at", path)
	store, err := recordstore.Open(ctx, recordstore.Config{File: recordsDB})
	if err != nil {
		return err
	}
	return store.Close()
}

const portalConfigTemplate = `{
  // the portal the live tests log into, they are skipped while
  // base_url is empty
  base_url: "",
  school: "",
  username: "",
  password: "",
}
`

func CreatePortalConfig() error {
	path, err := devenv.ResolvePath(portalConfig)
	if err != nil {
		return err
	}
	_, err = os.Stat(path)
	if err == nil {
		return nil
	}
	fmt.Println("writing portal config template to", path)
	return os.WriteFile(path, []byte(portalConfigTemplate), 0600)
}

func PrintConfigLocations() {
	slog.Info("some tests talk to a real portal, fill in dev/.state/webuntis_config.json5 to run them. look at the result of skipped tests in `go test -v` to see which ones.")
}
