package mcpserver

// FormatContract describes the Haven FS description format that LLM
// consumers should follow when writing or reviewing documents.
const FormatContract = `# Haven FS Description Format

A description is a UTF-8 text file (extension ` + "`.havenfs`" + `) that lists the
files, directories, tags and libraries of one snapshot of a tree.

## Layout

` + "```" + `
#BRANCH base=main parent=b0011 head=b0012
#CHUNK files 0-999 @0
FILE f1a7e parent=92e1f name=logo.png size=20320 tags=b400,b401 libs=a300
META f1a7e created=1723472370 mimetype=image/png
#CHUNK libraries @3000
LIB a300 info=b400,b401
#CHUNK tagmap @4000
TAG b400 branding:#8E44AD FR=f1a7e
TAG b401 logo FR=f1a7e
#CHUNK directories @25000
DIR 92e1f parent=root name=images
` + "```" + `

## Rules

1. ` + "`#BRANCH`" + ` carries ` + "`base`, `parent` and `head`" + `. When several are present the last complete one wins.
2. ` + "`#CHUNK <type> [<low>-<high>] @<offset>`" + ` opens a chunk. Known types: ` + "`files`, `directories`, `libraries`, `tagmap`" + `.
   A type may repeat only when every occurrence declares a distinct, non-overlapping range. Offsets are unique.
3. Ids are lower-case alphanumeric words with at least one digit and one letter (` + "`f1a7e`, `b400`" + `).
   Files and directories share one id space; ` + "`root`" + ` is the parent of top-level nodes.
4. ` + "`FILE <id> parent= name= size= [tags=] [libs=]`" + `: ` + "`size`" + ` is mandatory and numeric.
5. ` + "`DIR <id> parent= name=`" + `. Names may hold any characters except spaces and ` + "`= , : # @`" + `.
6. ` + "`META <id> key=value...`" + ` adds metadata (` + "`modified created update deleted restored mimetype`" + `) to a node declared earlier.
7. ` + "`LIB <id> <name>=<tag>[,<tag>...]`" + `: one association per tag id. Lines with the same id add up.
8. ` + "`TAG <id> <name>[:#RRGGBB] FR=<file>[,<file>...]`" + `: the color defaults to #ffffff.
9. Every referenced id (parent, tag, lib, FR) must be declared somewhere in the document.

## Diagnostics

Parsing never stops at a defect. Each problem is reported with a stable code
(e.g. ` + "`MISSING_TOKEN`, `DUPLICATE_NODE`, `DANGLING_REFERENCE`" + `) and a 1-based line and column.
Use the ` + "`parse_document`" + ` tool to check a draft before saving it.
`
