// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package database

import (
	"errors"
	"net"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
)

// 所有表名加 t_ 前缀
const tablePrefix = "t_"

// Source is one MySQL endpoint.
type Source struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// DSN renders the source for go-sql-driver with utf8mb4 and parsed times.
func (s Source) DSN() string {
	port := s.Port
	if port == "" {
		port = "3306"
	}
	c := mysqldriver.NewConfig()
	c.User = s.User
	c.Passwd = s.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(s.Host, port)
	c.DBName = s.DBName
	c.ParseTime = true
	c.Loc = time.Local
	c.Params = map[string]string{"charset": "utf8mb4"}
	return c.FormatDSN()
}

func (s Source) validate() error {
	if s.Host == "" || s.User == "" || s.DBName == "" {
		return errors.New("database source needs host, user and dbname")
	}
	return nil
}

// MySQLConfig is the default source plus optional dbresolver sources.
// Without replicas every query goes to the default source.
type MySQLConfig struct {
	Source   `mapstructure:",squash"`
	Primary  []Source `mapstructure:"primary"`
	Replicas []Source `mapstructure:"replicas"`
}

func (c MySQLConfig) resolved() bool {
	return len(c.Primary) > 0 || len(c.Replicas) > 0
}

// MongoConfig is only needed when notifications are stored in MongoDB.
type MongoConfig struct {
	URI         string        `mapstructure:"uri"`
	DB          string        `mapstructure:"db"`
	Compressors []string      `mapstructure:"compressors"`
	PoolSize    uint64        `mapstructure:"poolSize"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

func (c MongoConfig) Enabled() bool {
	return c.URI != "" && c.DB != ""
}

// Pool 连接池参数, zero means the default below
type Pool struct {
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"`
}

func (p Pool) withDefaults() Pool {
	if p.MaxOpenConns <= 0 {
		p.MaxOpenConns = 50
	}
	if p.MaxIdleConns <= 0 {
		p.MaxIdleConns = 10
	}
	if p.ConnMaxLifetime <= 0 {
		p.ConnMaxLifetime = 5 * time.Minute
	}
	if p.ConnMaxIdleTime <= 0 {
		p.ConnMaxIdleTime = time.Minute
	}
	return p
}

type Database struct {
	// SQLLog 打印每条 SQL, 仅调试时开启
	SQLLog bool        `mapstructure:"sqlLog"`
	Pool   Pool        `mapstructure:",squash"`
	MySQL  MySQLConfig `mapstructure:"mysql"`
	Mongo  MongoConfig `mapstructure:"mongo"`
}
