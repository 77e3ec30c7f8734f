// Package summarize hands a scraped text file to an external summarizer
// agent and checks what it produced.
//
// The agent itself is a collaborator: mdcrawl only fixes its contract. It
// receives a plain text input file and an output directory, is told the
// target file name, which is always the user supplied name plus ".txt",
// and must leave exactly one markdown document in the output directory.
package summarize
