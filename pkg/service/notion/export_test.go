package notion

// SplitChunks exposes splitChunks for testing
var SplitChunks = splitChunks
