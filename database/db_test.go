package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"geohash-service/config"
)

var testDB = config.DBConfig{
	User:     "geo",
	Password: "p@ss word",
	DBName:   "places",
	SSLMode:  "disable",
	Host:     "db",
	Port:     "5432",
}

func TestConnString(t *testing.T) {
	assert.Equal(t,
		"host=db port=5432 user=geo password=p@ss word dbname=places sslmode=disable",
		ConnString(testDB))
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "postgres://geo:p%40ss%20word@db:5432/places?sslmode=disable", DSN(testDB))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "dhx4", escapeLike("dhx4"))
	assert.Equal(t, `a\%b\_c\\`, escapeLike(`a%b_c\`))
}
