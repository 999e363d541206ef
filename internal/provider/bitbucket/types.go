package bitbucket

// Bitbucket API structures
type bitbucketUser struct {
	UUID        string `json:"uuid"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Nickname    string `json:"nickname"`
}

type bitbucketComment struct {
	ID        int    `json:"id"`
	CreatedOn string `json:"created_on"`
	UpdatedOn string `json:"updated_on"`
	Content   struct {
		Raw    string `json:"raw"`
		Markup string `json:"markup"`
		HTML   string `json:"html"`
	} `json:"content"`
	User    bitbucketUser `json:"user"`
	Deleted bool          `json:"deleted"`
}

type bitbucketCommentList struct {
	Values []bitbucketComment `json:"values"`
	Next   string             `json:"next"`
}
