package scoring

var RoundHalfUp = roundHalfUp
