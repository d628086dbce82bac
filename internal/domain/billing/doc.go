// Package billing models customer bills and the rules that tie their line
// items to menu item stock.
//
// A Bill is created unpaid with one or more lines, each snapshotting the
// menu item price at the time it was added. Stock is checked whenever a
// line is added and is only taken when the bill is paid. Paid bills are
// immutable; unpaid bills may be deleted once DeletionPolicy allows it.
package billing
