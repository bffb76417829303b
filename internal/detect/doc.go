// Package detect classifies extracted text tokens as sensitive data.
//
// Classification is an ordered, deterministic list of pure rules. Each rule
// looks at one Candidate (a token's text plus its neighbours on the line)
// and answers with one of three outcomes:
//
//   - Match: the token is of the rule's kind; evaluation stops.
//   - Pass: the rule does not apply; the next rule runs.
//   - Veto: the token looks like the rule's kind but fails validation in a
//     way that must not fall through (an SSN with area 000 is not a phone
//     number); evaluation stops with no result.
//
// # Precedence
//
// User custom patterns run first, then the built-in rules in this order:
//
//  1. PAN (Luhn)
//  2. IBAN (MOD-97)
//  3. SSN (with area/group/serial veto)
//  4. PASSPORT
//  5. JWT
//  6. API_KEY (AWS key id prefix, then the optional secret scanner)
//  7. EMAIL
//  8. PHONE
//  9. ADDRESS (graded by token context)
//  10. NAME
//
// PAN runs before PHONE so a card number is never read as a phone number.
// Barcodes are classified by their scanner and never reach the registry.
//
// # Scoring
//
// Score combines the extraction confidence with the rule result: validated
// kinds earn a bonus over the capped base, heuristic kinds are limited by
// their rule strength, and NAME carries an extra penalty.
//
// # Concurrency
//
// A Registry is read-only after construction and safe for concurrent use.
// PatternEngine compiles its expressions once, on first use.
package detect
