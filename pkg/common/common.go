package common

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/spf13/cast"
	"golang.org/x/crypto/bcrypt"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"

	NA = "N/A"
)

var snowflakeNode *snowflake.Node

func init() {
	nodeId := cast.ToInt64(os.Getenv("SERVICEHUB_NODE_ID")) % 1024
	node, err := snowflake.NewNode(nodeId)
	if err != nil {
		panic(err)
	}
	snowflakeNode = node
}

// UUIDint64 returns a snowflake int64 id
func UUIDint64() int64 {
	return snowflakeNode.Generate().Int64()
}

// UUID returns a snowflake id in base36 string form
func UUID() string {
	return snowflakeNode.Generate().Base36()
}

// HashPassword hashes a clear-text password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a bcrypt hash against a clear-text candidate
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// RandomSecret returns a hex-encoded random secret of n bytes
func RandomSecret(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))[:n*2]
	}
	return hex.EncodeToString(buf)
}

// FileExists checks a path
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IfEmptyStr returns defval when src is empty
func IfEmptyStr(src string, defval string) string {
	if src == "" {
		return defval
	}
	return src
}
