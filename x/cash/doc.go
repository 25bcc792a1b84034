/*
Package cash implements wallets holding coins of any number of currencies.

Wallets are stored in the "cash" bucket under the owner's address. The
Controller moves coins between wallets and is the token collaborator of any
extension that needs to hold funds on behalf of users (e.g. the stream vault).
*/
package cash
