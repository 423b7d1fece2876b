package main

import (
	"log"
	"os"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/session"
	"github.com/trezcool/darasa/restclient"
	logsvc "github.com/trezcool/darasa/services/logger"
	sqlitekv "github.com/trezcool/darasa/storage/keyvalue/sqlitedb"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewStdLogger(log.New(os.Stderr, "SHELL : ", log.LstdFlags))

	client, err := restclient.New(conf, logger)
	if err != nil {
		logger.Fatal(err.Error(), err)
	}

	repo, err := sqlitekv.Open(conf.Storage.Path)
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
	defer func() { _ = repo.Close() }()

	store := session.NewStore(repo, client, logger, conf)
	store.Init()

	cli := &commandLine{store: store, out: os.Stdout}
	if err = cli.run(os.Args); err != nil && err != errHelp {
		logger.Error(err.Error(), err)
		os.Exit(1)
	}
}
