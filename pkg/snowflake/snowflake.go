package snowflake

import (
	"github.com/bwmarrin/snowflake"
	"github.com/speps/go-hashids/v2"
)

// 业务 ID 前缀
const (
	PrefixCustomer    = "cust"
	PrefixTransaction = "tx"
	PrefixRedemption  = "red"
)

var (
	node   *snowflake.Node
	hasher *hashids.HashID
)

func init() {
	node, _ = snowflake.NewNode(1)

	hd := hashids.NewData()
	hd.Salt = "loyalty-api"
	hd.MinLength = 12
	hasher, _ = hashids.NewWithData(hd)
}

func GenID() int64 {
	return node.Generate().Int64()
}

// GenPrefixedID 生成形如 cust_xxxxxxxxxxxx 的对外 ID
func GenPrefixedID(prefix string) string {
	e, err := hasher.EncodeInt64([]int64{GenID()})
	if err != nil {
		// snowflake 只产生正数, 不会走到这里
		panic(err)
	}
	return prefix + "_" + e
}
