package cli

// Export internal functions for testing.

// RunTranslate exports runTranslate for testing.
var RunTranslate = runTranslate

// ParseTranslateOptions exports parseTranslateOptions for testing.
var ParseTranslateOptions = parseTranslateOptions

// TranslateOptions exports translateOptions for testing.
type TranslateOptions = translateOptions

// TranslateFlags exports translateFlags for testing.
type TranslateFlags = translateFlags

// Preflight exports preflight for testing.
var Preflight = preflight

// RunConfigSet exports runConfigSet for testing.
var RunConfigSet = runConfigSet

// RunConfigGet exports runConfigGet for testing.
var RunConfigGet = runConfigGet

// RunConfigList exports runConfigList for testing.
var RunConfigList = runConfigList

// WriteFileAtomic exports writeFileAtomic for testing.
var WriteFileAtomic = writeFileAtomic
