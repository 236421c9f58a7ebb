// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package configuration - the refnetd configuration file
//
// a configuration file is a Lua program whose last expression is a
// table matching the Configuration structure; defaults are applied
// first, relative paths are anchored at the data directory and the
// pool tuning is bounds checked
package configuration

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"
	"github.com/yuin/gluamapper"
	lua "github.com/yuin/gopher-lua"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultLevelDBDirectory = "data"
	defaultDatabase         = "refnet.leveldb"

	defaultLogDirectory = "log"
	defaultLogFile      = "refnetd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size

	defaultPoolExpiryHours  = 336 // two weeks
	defaultPoolCycleMinutes = 60
)

// DatabaseType - the leveldb location
type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// PoolType - unconfirmed referral pool tuning
type PoolType struct {
	ExpiryHours  int `gluamapper:"expiry_hours" json:"expiry_hours"`
	CycleMinutes int `gluamapper:"cycle_minutes" json:"cycle_minutes"`
}

// Configuration - the refnetd configuration file
type Configuration struct {
	DataDirectory string               `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string               `gluamapper:"pidfile" json:"pidfile"`
	Database      DatabaseType         `gluamapper:"database" json:"database"`
	Pool          PoolType             `gluamapper:"pool" json:"pool"`
	Logging       logger.Configuration `gluamapper:"logging" json:"logging"`
}

// DatabasePath - the full path of the referral database
func (config *Configuration) DatabasePath() string {
	return filepath.Join(config.Database.Directory, config.Database.Name)
}

// GetConfiguration - read, decode and verify the configuration
func GetConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default

		Database: DatabaseType{
			Directory: defaultLevelDBDirectory,
			Name:      defaultDatabase,
		},

		Pool: PoolType{
			ExpiryHours:  defaultPoolExpiryHours,
			CycleMinutes: defaultPoolCycleMinutes,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels: map[string]string{
				logger.DefaultTag: "critical",
			},
		},
	}

	if err := parseConfigurationFile(configurationFileName, options); nil != err {
		return nil, err
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("path: %q is not a directory", options.DataDirectory)
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = ensureAbsolute(options.DataDirectory, *f)
	}

	// optional absolute paths cannot be forced
	if "" != options.PidFile {
		options.PidFile = ensureAbsolute(options.DataDirectory, options.PidFile)
	}

	// the pool must both expire and scan
	if options.Pool.ExpiryHours <= 0 {
		return nil, fmt.Errorf("pool.expiry_hours: %d must be positive", options.Pool.ExpiryHours)
	}
	if options.Pool.CycleMinutes <= 0 {
		return nil, fmt.Errorf("pool.cycle_minutes: %d must be positive", options.Pool.CycleMinutes)
	}
	if 60*options.Pool.ExpiryHours < options.Pool.CycleMinutes {
		return nil, fmt.Errorf("pool.cycle_minutes: %d exceeds the expiry time", options.Pool.CycleMinutes)
	}

	return options, nil
}

// execute the Lua configuration and map its result table
func parseConfigurationFile(fileName string, config *Configuration) error {
	L := lua.NewState()
	defer L.Close()

	L.OpenLibs()

	// create the global "arg" table
	// arg[0] = config file
	arg := &lua.LTable{}
	arg.Insert(0, lua.LString(fileName))
	L.SetGlobal("arg", arg)

	// execute configuration
	if err := L.DoFile(fileName); err != nil {
		return err
	}

	table, ok := L.Get(L.GetTop()).(*lua.LTable)
	if !ok {
		return fmt.Errorf("configuration file: %q must return a table", fileName)
	}

	mapperOption := gluamapper.Option{
		NameFunc: func(s string) string {
			return s
		},
		TagName: "gluamapper",
	}
	mapper := gluamapper.Mapper{Option: mapperOption}
	return mapper.Map(table, config)
}

// ensureAbsolute - turn a relative name into one anchored at the directory
func ensureAbsolute(directory string, filePath string) string {
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(directory, filePath)
	}
	return filepath.Clean(filePath)
}
