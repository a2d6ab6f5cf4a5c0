package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/samuelfneumann/robotac/experiment"
)

func main() {
	// Values in a .env file do not override the environment
	envErr := godotenv.Load()

	configFile := flag.String("config", os.Getenv("ROBOTAC_CONFIG"),
		"JSON experiment configuration, defaults to the reference run")
	resume := flag.Bool("resume", false,
		"load previously saved weights before training")
	save := flag.Bool("save", true, "save weights during and after the run")
	episodes := flag.Int("episodes", 0, "number of episodes to run")
	seed := flag.Uint64("seed", 0, "seed for all randomness")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	config := experiment.DefaultConfig()
	if *configFile != "" {
		var err error
		config, err = experiment.LoadConfig(*configFile)
		if err != nil {
			log.Fatal(err)
		}
	}

	// Flags given on the command line override the configuration file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "resume":
			config.LoadPreviousWeights = *resume
		case "save":
			config.SaveWeights = *save
		case "episodes":
			config.Episodes = *episodes
		case "seed":
			config.Seed = *seed
		}
	})
	if level := os.Getenv("ROBOTAC_LOG_LEVEL"); level != "" {
		config.LogLevel = level
	}

	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(level)

	logger := log.WithField("run", uuid.New().String())
	if envErr != nil {
		logger.WithError(envErr).Debug("no .env file loaded")
	}
	logger.WithFields(logrus.Fields{
		"config":   *configFile,
		"episodes": config.Episodes,
		"seed":     config.Seed,
	}).Info("starting run")

	exp, err := experiment.New(config, logger)
	if err != nil {
		logger.Fatal(err)
	}
	if config.ProgressBar {
		exp.ShowProgress(os.Stderr)
	}

	// Interrupts stop the run between episodes
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt,
		syscall.SIGTERM)
	defer stop()

	if err := exp.Run(ctx); err != nil {
		logger.Fatal(err)
	}
	if err := exp.Save(); err != nil {
		logger.Fatal(err)
	}
	logger.Info("run finished")
}
