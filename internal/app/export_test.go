package service

// WithScorerWrapper exposes withScorerWrapper to external tests.
var WithScorerWrapper = withScorerWrapper
