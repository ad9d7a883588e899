package forge

// Version is the interpreter version reported by the CLI.
const Version = "0.1.0"
