package p16

import (
	_ "embed"
	"encoding/json"
	"sort"
)

const hexDigits = "0123456789ABCDEF"

// Dialect holds the data-driven parts of the instruction set: the branch
// condition aliases and the ALU/RAM sub-operation tables. The default
// dialect is embedded; an alternate ISA revision can be selected at build
// time by replacing dialect.json.
type Dialect struct {
	ConditionNames   []string                  `json:"condition_names"`
	BranchConditions map[string]int            `json:"branch_conditions"`
	ALM1             map[string]map[string]int `json:"alm1"`
	ALM2             map[string]map[string]int `json:"alm2"`
}

//go:embed dialect.json
var dialectJSON []byte

var dialect Dialect

// Reverse lookups used by the listing decoder. Condition codes take
// their canonical names straight from the dialect; where several ALM
// names share a code the lexicographically first wins.
var (
	conditionNames [16]string
	alm1Names      map[string]map[int]string
	alm2Names      map[string]map[int]string
)

func init() {
	if err := json.Unmarshal(dialectJSON, &dialect); err != nil {
		panic("p16: bad embedded dialect: " + err.Error())
	}
	if len(dialect.ConditionNames) != len(conditionNames) {
		panic("p16: dialect must name all 16 branch condition codes")
	}
	for code, name := range dialect.ConditionNames {
		if dialect.BranchConditions[name] != code {
			panic("p16: canonical condition name " + name + " is not an alias of its code")
		}
		conditionNames[code] = name
	}

	alm1Names = reverseALM(dialect.ALM1)
	alm2Names = reverseALM(dialect.ALM2)
}

func reverseALM(alm map[string]map[string]int) map[string]map[int]string {
	rev := make(map[string]map[int]string, len(alm))
	for class, subs := range alm {
		names := make([]string, 0, len(subs))
		for name := range subs {
			names = append(names, name)
		}
		sort.Strings(names)
		rev[class] = make(map[int]string, len(names))
		for i := len(names) - 1; i >= 0; i-- {
			rev[class][subs[names[i]]] = names[i]
		}
	}
	return rev
}

func nib(n int) byte {
	return hexDigits[n&0xF]
}

// hex2 renders an 8-bit local offset, high nibble first.
func hex2(n int) string {
	return string([]byte{nib(n >> 4), nib(n)})
}

// hex4 renders a 16-bit value, high nibble first.
func hex4(n int) string {
	return string([]byte{nib(n >> 12), nib(n >> 8), nib(n >> 4), nib(n)})
}
