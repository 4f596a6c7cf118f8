package langprompt

// ClientVersion is the version of this client library.
const ClientVersion = "0.1.0"
