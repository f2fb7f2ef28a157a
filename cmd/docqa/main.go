// docqa validates the documents of MongoDB collections against a declarative
// YAML rule file.
//
// Usage:
//
//	# Validate every collection declared in the rule file
//	docqa run --rules config.yaml
//
//	# Check the rule file without connecting to the database
//	docqa check-rules --rules config.yaml
//
//	# List recent runs from the history store
//	docqa history --limit 10
package main

func main() {
	Execute()
}
