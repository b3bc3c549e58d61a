// Package jsonrepair turns raw model output into parsed JSON.
//
// Models wrap JSON in markdown fences, emit numbers with absurd precision, and
// get cut off mid-array when they hit output limits. Parse applies a fixed
// sequence of text transforms before a strict parse and, for arrays only, one
// truncation repair. Callers receive a parsed Value or an error, never a
// partially decoded result.
//
//	StripCodeFence("```json\n{\"a\":1}\n```")   => {"a":1}
//	TruncateLongDecimals("0.123456789012345")  => 0.1234567890
//	RepairTruncatedArray(`[{"a":1},{"b":`)     => [{"a":1}]
package jsonrepair
