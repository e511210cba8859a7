package domain

// SystemMeta describes the sync bridge. Exactly one exists per store.
type SystemMeta struct {
	DriveFileID  string `json:"driveFileId,omitempty"`
	AccessToken  string `json:"accessToken,omitempty"`
	AccountEmail string `json:"accountEmail,omitempty"`
	LastSync     string `json:"lastSync,omitempty"`
	ClientID     string `json:"clientId,omitempty"`
}

// Overlay copies every non-empty field of stored over m.
func (m SystemMeta) Overlay(stored SystemMeta) SystemMeta {
	if stored.DriveFileID != "" {
		m.DriveFileID = stored.DriveFileID
	}
	if stored.AccessToken != "" {
		m.AccessToken = stored.AccessToken
	}
	if stored.AccountEmail != "" {
		m.AccountEmail = stored.AccountEmail
	}
	if stored.LastSync != "" {
		m.LastSync = stored.LastSync
	}
	if stored.ClientID != "" {
		m.ClientID = stored.ClientID
	}
	return m
}

// Connected reports whether a cloud token is present.
func (m SystemMeta) Connected() bool {
	return m.AccessToken != ""
}

// SystemMetaView is SystemMeta as exposed over the API, without the token.
type SystemMetaView struct {
	Connected    bool   `json:"connected"`
	AccountEmail string `json:"accountEmail,omitempty"`
	DriveFileID  string `json:"driveFileId,omitempty"`
	LastSync     string `json:"lastSync,omitempty"`
	ClientID     string `json:"clientId,omitempty"`
}

// View hides the access token.
func (m SystemMeta) View() SystemMetaView {
	return SystemMetaView{
		Connected:    m.Connected(),
		AccountEmail: m.AccountEmail,
		DriveFileID:  m.DriveFileID,
		LastSync:     m.LastSync,
		ClientID:     m.ClientID,
	}
}
