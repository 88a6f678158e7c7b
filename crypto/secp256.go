package crypto

import (
	"github.com/astaxie/beego/logs"
)

var secpLog = logs.NewLogger()

func init() {
	secpLog.Info("elliptic curve cryptography context init")
}
