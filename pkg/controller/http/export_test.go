package http

// VerifySlackSignature exposes the signature check to the external test package
var VerifySlackSignature = verifySlackSignature
