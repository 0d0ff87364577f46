// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// DotEnvFile is the name of the optional environment file in the working directory.
const DotEnvFile = ".env"

// LoadDotEnv loads SEMCHAT_* variables from .env files into the process
// environment. Variables already set in the environment win. Missing files
// are not an error; it reports whether any file was loaded.
func LoadDotEnv(paths ...string) (bool, error) {
	if len(paths) == 0 {
		paths = []string{DotEnvFile}
	}

	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return false, nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return false, errors.Wrap(err, "failed to load .env")
	}
	return true, nil
}
