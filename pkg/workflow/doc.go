// Package workflow runs the named relief operations.
//
// Inputs arrive as positional strings the way a form submits them. Numeric
// fields are parsed as integers, blank fields become NULL and dates must be
// YYYY-MM-DD. Store rejections come back as *Failure with a Kind; nothing is
// retried and nothing is compensated, the store's transaction is the unit
// of atomicity.
//
// The trigger demonstrations read the affected stock row before and after
// the mutation on separate connections. Those reads only report what
// happened; they do not make the operation atomic.
package workflow
