package state

var (
	facilitatorPrefix    = []byte("gho/facilitator/")
	facilitatorIndexKey  = []byte("gho/facilitator-index")
	balancePrefix        = []byte("gho/balance/")
	tokenSupplyKey       = []byte("gho/supply")
	debtUserPrefix       = []byte("ghodebt/user/")
	debtScaledSupplyKey  = []byte("ghodebt/scaled-supply")
	debtAllowancePrefix  = []byte("ghodebt/allowance/")
	debtAllowanceDivider = []byte("/")
)

func facilitatorKey(addr []byte) []byte {
	return append(append([]byte(nil), facilitatorPrefix...), addr...)
}

func balanceKey(addr []byte) []byte {
	return append(append([]byte(nil), balancePrefix...), addr...)
}

func debtUserKey(addr []byte) []byte {
	return append(append([]byte(nil), debtUserPrefix...), addr...)
}

func debtAllowanceKey(from, delegatee []byte) []byte {
	key := append(append([]byte(nil), debtAllowancePrefix...), from...)
	key = append(key, debtAllowanceDivider...)
	return append(key, delegatee...)
}
